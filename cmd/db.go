package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eccowas/admitgen/internal/utils"
	"github.com/eccowas/admitgen/pkg/storage"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the admitgen database",
}

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := dbPathFromConfig()
		if err != nil {
			return err
		}

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", dbPath)
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		// Print schema first
		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, dbPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints how many records each key holds.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No data in the database to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "KEY\tRECORDS\tBYTES\t")

		var totalRecords, totalBytes int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t\n", s.Key, s.Records, s.Bytes)
			totalRecords += s.Records
			totalBytes += s.Bytes
		}

		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t\n", totalRecords, totalBytes)

		return w.Flush()
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete stored records",
	Long:  "Delete one key with --key, or everything. Asks for confirmation unless --yes is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		yes, _ := cmd.Flags().GetBool("yes")

		what := "ALL stored records"
		if key != "" {
			what = "every record under " + key
		}
		if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete "+what+"? This cannot be undone. [y/N] ") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		return withWriteLock(func(db *storage.DB) error {
			if key != "" {
				if err := db.RemoveKey(cmd.Context(), key); err != nil {
					return err
				}
			} else if err := db.ClearAll(cmd.Context()); err != nil {
				return err
			}
			utils.Log.Infof("Deleted %s", what)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import records from a JSON file",
	Long: `Import records from a JSON file ("-" for stdin).

Without --key the file is a storage dump: an object mapping keys (schoolData,
studentData) to their lists, either as JSON or as JSON text the way a browser
keeps it. With --key the file holds the list (or a single record) for that key.
Records are appended unless --replace is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		key, _ := cmd.Flags().GetString("key")
		replace, _ := cmd.Flags().GetBool("replace")

		return withWriteLock(func(db *storage.DB) error {
			if key != "" {
				n, err := db.Import(cmd.Context(), key, data, replace)
				if err != nil {
					return err
				}
				utils.Log.Infof("Imported %d records into %s", n, key)
				return nil
			}

			counts, err := db.ImportDump(cmd.Context(), data, replace)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(counts))
			for k := range counts {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				utils.Log.Infof("Imported %d records into %s", counts[k], k)
			}
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every key as a storage dump",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		dump, err := db.Dump(cmd.Context())
		if err != nil {
			return err
		}
		return writeOutput(cmd, func(w io.Writer) error {
			_, err := w.Write(append(dump, '\n'))
			return err
		})
	},
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(shellCmd, statsCmd, clearCmd, importCmd, exportCmd)

	clearCmd.Flags().String("key", "", "Only delete this key")
	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	importCmd.Flags().String("key", "", "Import a list into this key instead of reading a dump")
	importCmd.Flags().Bool("replace", false, "Overwrite the keys instead of appending")

	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
}
