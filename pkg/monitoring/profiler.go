/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: profiler.go
Description: Run profiler for stlstream commands. Captures a CPU profile for the lifetime
of a run and a heap profile at its end, so decoder throughput and allocation behaviour
on large meshes can be inspected with pprof.
*/

package monitoring

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ProfilerType represents the type of profiling
type ProfilerType string

const (
	ProfilerTypeCPU    ProfilerType = "cpu"
	ProfilerTypeMemory ProfilerType = "memory"
)

// ProfilerConfig represents profiling configuration
type ProfilerConfig struct {
	OutputDir     string `json:"output_dir"`
	CPUProfile    bool   `json:"cpu_profile"`
	MemoryProfile bool   `json:"memory_profile"`
}

// Enabled reports whether any profile is requested
func (c *ProfilerConfig) Enabled() bool {
	return c.CPUProfile || c.MemoryProfile
}

// ProfileResult describes one written profile
type ProfileResult struct {
	Type       ProfilerType  `json:"type"`
	StartTime  time.Time     `json:"start_time"`
	Duration   time.Duration `json:"duration"`
	OutputFile string        `json:"output_file"`
	Size       int64         `json:"size"`
}

// Profiler captures profiles around one command run
type Profiler struct {
	config *ProfilerConfig
	logger logrus.FieldLogger

	mu        sync.Mutex
	running   bool
	startTime time.Time
	cpuFile   *os.File
	cpuPath   string
}

// NewProfiler creates a new profiler
func NewProfiler(config *ProfilerConfig, logger logrus.FieldLogger) *Profiler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Profiler{config: config, logger: logger}
}

// Start begins profiling
func (p *Profiler) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("profiler already running")
	}
	if err := os.MkdirAll(p.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	p.startTime = time.Now()
	if p.config.CPUProfile {
		if err := p.startCPUProfile(); err != nil {
			return err
		}
	}

	p.running = true
	p.logger.WithField("output_dir", p.config.OutputDir).Debug("Profiler started")
	return nil
}

// startCPUProfile starts CPU profiling
func (p *Profiler) startCPUProfile() error {
	path := p.outputPath(ProfilerTypeCPU)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CPU profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}
	p.cpuFile, p.cpuPath = file, path
	return nil
}

// Stop ends profiling and returns what was written
func (p *Profiler) Stop() ([]ProfileResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil, fmt.Errorf("profiler not running")
	}
	p.running = false
	elapsed := time.Since(p.startTime)

	var results []ProfileResult
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		err := p.cpuFile.Close()
		p.cpuFile = nil
		if err != nil {
			return results, fmt.Errorf("failed to close CPU profile: %w", err)
		}
		results = append(results, p.result(ProfilerTypeCPU, p.cpuPath, elapsed))
	}

	if p.config.MemoryProfile {
		path := p.outputPath(ProfilerTypeMemory)
		if err := writeHeapProfile(path); err != nil {
			return results, err
		}
		results = append(results, p.result(ProfilerTypeMemory, path, elapsed))
	}

	for _, r := range results {
		p.logger.WithFields(logrus.Fields{
			"type":     r.Type,
			"file":     r.OutputFile,
			"size":     r.Size,
			"duration": r.Duration,
		}).Info("Profile written")
	}
	return results, nil
}

// IsRunning reports whether profiling is active
func (p *Profiler) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Profiler) outputPath(t ProfilerType) string {
	return filepath.Join(p.config.OutputDir, fmt.Sprintf("%s_%s.prof", t, p.startTime.Format("20060102-150405.000")))
}

func (p *Profiler) result(t ProfilerType, path string, elapsed time.Duration) ProfileResult {
	r := ProfileResult{Type: t, StartTime: p.startTime, Duration: elapsed, OutputFile: path}
	if info, err := os.Stat(path); err == nil {
		r.Size = info.Size()
	}
	return r
}

// writeHeapProfile writes an up to date heap profile to path
func writeHeapProfile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create memory profile file: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	return file.Close()
}
