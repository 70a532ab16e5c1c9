package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

type SysInfo struct {
	Arch       string
	Hostname   string
	Platform   string
	Kernel     string
	CPUModel   string
	CPUCores   int
	CPUThreads int
	CPUFreq    float64
	RAM        float64
	Container  bool
}

// Fields the platform refuses to report stay zero valued.
func HostStat() SysInfo {
	hostStat, _ := host.Info()
	cpuStat, _ := cpu.Info()
	vmStat, _ := mem.VirtualMemory()
	cores, _ := cpu.Counts(false)
	threads, _ := cpu.Counts(true)
	info := SysInfo{
		Arch:       runtime.GOARCH,
		CPUCores:   cores,
		CPUThreads: threads,
		Container:  inContainer(),
	}
	if hostStat != nil {
		info.Hostname = hostStat.Hostname
		info.Platform = strings.TrimSpace(hostStat.Platform + " " + hostStat.PlatformVersion)
		info.Kernel = hostStat.KernelVersion
	}
	if vmStat != nil {
		info.RAM = float64(vmStat.Total) / 1024 / 1024 / 1024
	}
	if len(cpuStat) > 0 {
		info.CPUModel = cpuStat[0].ModelName
		totalFreq := 0.0
		for _, stat := range cpuStat {
			totalFreq += stat.Mhz
		}
		info.CPUFreq = totalFreq / float64(len(cpuStat))
	}
	return info
}

func inContainer() bool {
	for _, marker := range []string{"/.dockerenv", "/run/.containerenv"} {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}
	return false
}

func (s SysInfo) Environment() string {
	if s.Container {
		return "Inside Docker Container"
	}
	return "Host System"
}

func (s SysInfo) Display() [][2]string {
	pairs := [][2]string{
		{"CPU Model", s.CPUModel},
		{"CPU Cores", strconv.Itoa(s.CPUCores)},
		{"CPU Threads", strconv.Itoa(s.CPUThreads)},
		{"CPU Clock", fmt.Sprintf("%.0f MHz", s.CPUFreq)},
		{"Memory Total", fmt.Sprintf("%.1f GB", s.RAM)},
		{"OS", strings.TrimSpace(s.Platform + " " + s.Kernel)},
		{"Architecture", s.Arch},
		{"Hostname", s.Hostname},
		{"Environment", s.Environment()},
	}
	display := make([][2]string, 0, len(pairs))
	for _, pair := range pairs {
		if pair[1] == "" || pair[1] == "0" || pair[1] == "0 MHz" || pair[1] == "0.0 GB" {
			continue
		}
		display = append(display, pair)
	}
	return display
}

func (s SysInfo) Parameters() [][2]string {
	return [][2]string{
		{"arch", s.Arch},
		{"hostname", s.Hostname},
		{"platform", s.Platform},
		{"kernel", s.Kernel},
		{"cpu", s.CPUModel},
		{"cores", strconv.Itoa(s.CPUCores)},
		{"threads", strconv.Itoa(s.CPUThreads)},
		{"freq", fmt.Sprintf("%.0f", s.CPUFreq)},
		{"ram", fmt.Sprintf("%.1f", s.RAM)},
		{"environment", s.Environment()},
	}
}
