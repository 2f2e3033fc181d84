/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"os"

	"club-points-ledger/internal/apperr"
	"club-points-ledger/internal/common"
	"club-points-ledger/internal/config"
	"club-points-ledger/internal/models"

	"github.com/spf13/cobra"
)

var (
	cfg           *models.Config
	loggerCleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:          "clubctl",
	Short:        "Operate the club point ledger",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
		_, loggerCleanup = common.InitializeLogger()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		loggerCleanup()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		loggerCleanup()
		if apperr.Retryable(err) {
			fmt.Fprintf(os.Stderr, "%v (safe to retry with the same request id)\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
