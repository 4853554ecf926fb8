/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: profile.go
Description: Optional CPU and heap profiling around any command run.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/stlstream/pkg/monitoring"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var activeProfiler *monitoring.Profiler

// StartProfiling starts the profiler when --profile-cpu or --profile-memory is set
func StartProfiling(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg := &monitoring.ProfilerConfig{
		OutputDir:     viper.GetString("profile_dir"),
		CPUProfile:    viper.GetBool("profile_cpu"),
		MemoryProfile: viper.GetBool("profile_memory"),
	}
	if !cfg.Enabled() {
		return nil
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	p := monitoring.NewProfiler(cfg, logger)
	if err := p.Start(); err != nil {
		return fmt.Errorf("failed to start profiler: %w", err)
	}
	activeProfiler = p
	return nil
}

// StopProfiling writes the profiles of a started run
func StopProfiling() error {
	if activeProfiler == nil {
		return nil
	}
	p := activeProfiler
	activeProfiler = nil

	if _, err := p.Stop(); err != nil {
		return fmt.Errorf("failed to stop profiler: %w", err)
	}
	return nil
}
