package tools

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/phildougherty/quick-assistant/internal/ai"
)

// processListLimit keeps the spoken summary short
const processListLimit = 20

// RegisterSystemTools adds system information and process management
func RegisterSystemTools(r *Registry) error {
	tools := []Tool{
		{
			Definition: ai.Function{
				Name:        "get_system_info",
				Description: "Reports host, CPU, memory, disk, and network information for this machine.",
				Parameters:  objectSchema(map[string]interface{}{}),
			},
			Handler: getSystemInfo,
		},
		{
			Definition: ai.Function{
				Name:        "list_processes",
				Description: "Lists the processes using the most memory.",
				Parameters:  objectSchema(map[string]interface{}{}),
			},
			Handler: listProcesses,
		},
		{
			Definition: ai.Function{
				Name:        "kill_process",
				Description: "Kills all processes with the given name.",
				Parameters: objectSchema(map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "The process name to kill.",
					},
				}, "name"),
			},
			Handler: killProcess,
		},
	}

	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func getSystemInfo(ctx context.Context, args map[string]interface{}) (string, error) {
	var b strings.Builder

	if info, err := host.InfoWithContext(ctx); err == nil {
		fmt.Fprintf(&b, "Host: %s (%s %s)\n", info.Hostname, info.Platform, info.PlatformVersion)
		fmt.Fprintf(&b, "Uptime: %s\n", (time.Duration(info.Uptime) * time.Second).String())
	}

	cores, _ := cpu.CountsWithContext(ctx, true)
	fmt.Fprintf(&b, "CPU: %d logical cores (%s/%s)\n", cores, runtime.GOOS, runtime.GOARCH)

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		fmt.Fprintf(&b, "Memory: %.1f GB used of %.1f GB (%.0f%%)\n",
			float64(vm.Used)/1e9, float64(vm.Total)/1e9, vm.UsedPercent)
	}

	if usage, err := disk.UsageWithContext(ctx, "/"); err == nil {
		fmt.Fprintf(&b, "Disk: %.1f GB used of %.1f GB (%.0f%%)\n",
			float64(usage.Used)/1e9, float64(usage.Total)/1e9, usage.UsedPercent)
	}

	if ifaces, err := psnet.InterfacesWithContext(ctx); err == nil {
		var up []string
		for _, iface := range ifaces {
			if iface.Name == "lo" || len(iface.Addrs) == 0 {
				continue
			}
			for _, flag := range iface.Flags {
				if flag == "up" {
					up = append(up, fmt.Sprintf("%s (%s)", iface.Name, iface.Addrs[0].Addr))
					break
				}
			}
		}
		if len(up) > 0 {
			fmt.Fprintf(&b, "Network: %s\n", strings.Join(up, ", "))
		}
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		return "", fmt.Errorf("failed to gather system information")
	}
	return result, nil
}

func listProcesses(ctx context.Context, args map[string]interface{}) (string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list processes: %w", err)
	}

	type entry struct {
		pid    int32
		name   string
		rssMiB float64
	}
	var entries []entry
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		var rss uint64
		if memInfo, err := p.MemoryInfoWithContext(ctx); err == nil && memInfo != nil {
			rss = memInfo.RSS
		}
		entries = append(entries, entry{pid: p.Pid, name: name, rssMiB: float64(rss) / (1 << 20)})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rssMiB > entries[j].rssMiB })
	if len(entries) > processListLimit {
		entries = entries[:processListLimit]
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s (pid %d, %.0f MiB)\n", e.name, e.pid, e.rssMiB)
	}
	return strings.TrimSpace(b.String()), nil
}

func killProcess(ctx context.Context, args map[string]interface{}) (string, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return "", err
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list processes: %w", err)
	}

	killed := 0
	for _, p := range procs {
		procName, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if !strings.EqualFold(procName, name) {
			continue
		}
		if err := p.KillWithContext(ctx); err == nil {
			killed++
		}
	}

	if killed == 0 {
		return "", fmt.Errorf("no process named %q found or killable", name)
	}
	return fmt.Sprintf("Killed %d process(es) named %s", killed, name), nil
}
