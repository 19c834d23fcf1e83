/*
 * Copyright (c) SAS Institute Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package shared

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sassoftware/sign4j/config"
)

var (
	ArgConfig   string
	ArgVerbose  bool
	ArgQuote    bool
	ArgTool     string
	ArgDryRun   bool
	ArgLogLevel string
	ArgLogFile  string

	CurrentConfig *config.Config
	argVersion    bool
)

var RootCmd = &cobra.Command{
	Use:   "sign4j [options] <input filename> <sign command>",
	Short: "Run a signing command on a JAR and keep it a valid ZIP",
	Long: `Runs a signing command (for example an Authenticode signer) against a JAR or
ZIP file, then extends the ZIP comment so that the bytes appended by the
signer are treated as comment data and the archive stays valid.`,
	Example: `  sign4j -q app.exe signtool sign /f cert.pfx app.exe
  sign4j --tool signtool app.exe`,
	PersistentPreRun: showVersion,
	RunE:             signCmd,
	SilenceUsage:     true,
	SilenceErrors:    true,
}

func init() {
	flags := RootCmd.Flags()
	// everything after the input file belongs to the sign command
	flags.SetInterspersed(false)
	flags.StringVarP(&ArgConfig, "config", "c", "", "Configuration file")
	flags.BoolVarP(&ArgVerbose, "verbose", "v", false, "Verbose output of variables and debug statements")
	flags.BoolVarP(&ArgQuote, "quote", "q", false, "Add quotes to parameters of signing command line")
	flags.StringVarP(&ArgTool, "tool", "t", "", "Use a signing command from the configuration file")
	flags.BoolVarP(&ArgDryRun, "dry-run", "n", false, "Locate the ZIP end record and exit without signing")
	flags.StringVar(&ArgLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&ArgLogFile, "log-file", "", "Write JSON logs to this file, or - for stderr")
	flags.BoolVar(&argVersion, "version", false, "Show version and exit")
}

func showVersion(cmd *cobra.Command, args []string) {
	if argVersion {
		fmt.Printf("sign4j version %s (%s)\n", config.Version, config.Commit)
		os.Exit(0)
	}
}

func Main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitCode(err))
	}
}
