//go:build linux

/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	perf "github.com/hodgesds/perf-utils"
	"go.uber.org/zap"
)

// withInstructionCount runs work under a hardware instruction counter, falling back to a plain run when unavailable
func withInstructionCount(work func() error) (err error) {
	var ran bool
	pv, perr := perf.CPUInstructions(func() error {
		ran = true
		err = work()
		return err
	})
	if !ran {
		logger.Warn("hardware counters unavailable", zap.Error(perr))
		return work()
	}
	if err == nil && pv != nil {
		logger.Info("cpu instructions",
			zap.Uint64("instructions", pv.Value),
			zap.Uint64("timeEnabledNs", pv.TimeEnabled),
			zap.Uint64("timeRunningNs", pv.TimeRunning))
	}
	return
}
