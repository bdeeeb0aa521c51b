package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eccowas/admitgen/internal/utils"
	"github.com/eccowas/admitgen/pkg/admission"
	"github.com/eccowas/admitgen/pkg/storage"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Manage admission batches (year, class and student names)",
}

var batchAddCmd = &cobra.Command{
	Use:   "add [names...]",
	Short: "Save a new admission batch",
	Long: `Save a new admission batch. Names come from the arguments, from --name and
from --names-file (one per line, "-" for stdin). Names are trimmed, and blank or
repeated names are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := collectNames(cmd, args)
		if err != nil {
			return err
		}
		policy, err := renamePolicy()
		if err != nil {
			return err
		}
		return withWriteLock(func(db *storage.DB) error {
			ed := admission.NewEditor(storage.NewRepo(db), policy)
			ed.AdmissionYear, _ = cmd.Flags().GetString("year")
			ed.AdmissionClass, _ = cmd.Flags().GetString("class")
			for _, n := range names {
				if !ed.AddName(n) && strings.TrimSpace(n) != "" {
					utils.Log.Debugf("Skipping repeated name %q", n)
				}
			}
			saved, err := ed.Commit(cmd.Context())
			if err != nil {
				printValidation(err)
				return err
			}
			utils.Log.Infof("Saved batch %s: %s %s with %d names", saved.ID, saved.AdmissionClass, saved.AdmissionYear, len(saved.Names))
			return nil
		})
	},
}

var batchEditCmd = &cobra.Command{
	Use:   "edit <id|position>",
	Short: "Change a stored batch",
	Long: `Change a stored batch. Renames are applied first, then removals, then
additions. Positions refer to the names as currently stored, starting at 0.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := renamePolicy()
		if err != nil {
			return err
		}
		return withWriteLock(func(db *storage.DB) error {
			repo := storage.NewRepo(db)
			batches, err := repo.ListBatches(cmd.Context())
			if err != nil {
				return err
			}
			current, err := pickBatch(batches, args[0])
			if err != nil {
				return err
			}

			ed := admission.EditBatch(repo, policy, current)
			if err := applyBatchEdits(cmd, ed); err != nil {
				return err
			}

			next := ed.Batch()
			if next.AdmissionYear == current.AdmissionYear && next.AdmissionClass == current.AdmissionClass &&
				utils.AreSlicesEqual(next.Names, current.Names) {
				utils.Log.Info("Nothing to change")
				return nil
			}
			saved, err := ed.Commit(cmd.Context())
			if err != nil {
				printValidation(err)
				return err
			}
			utils.Log.Infof("Updated batch %s, now %d names", saved.ID, len(saved.Names))
			return nil
		})
	},
}

// applyBatchEdits applies the edit flags to ed in a fixed order.
func applyBatchEdits(cmd *cobra.Command, ed *admission.Editor) error {
	if cmd.Flags().Changed("year") {
		ed.AdmissionYear, _ = cmd.Flags().GetString("year")
	}
	if cmd.Flags().Changed("class") {
		ed.AdmissionClass, _ = cmd.Flags().GetString("class")
	}

	renames, _ := cmd.Flags().GetStringArray("rename")
	for _, r := range renames {
		i, name, err := parseRename(r)
		if err != nil {
			return err
		}
		if err := ed.RenameName(i, name); err != nil {
			return err
		}
	}

	removes, _ := cmd.Flags().GetIntSlice("remove")
	for _, i := range removalOrder(removes) {
		if err := ed.RemoveName(i); err != nil {
			return err
		}
	}

	adds, _ := cmd.Flags().GetStringArray("add")
	for _, n := range adds {
		ed.AddName(n)
	}
	return nil
}

// removalOrder returns the positions highest first with repeats dropped, so
// each removal addresses the name that was at that position before the edit.
func removalOrder(positions []int) []int {
	out := append([]int(nil), positions...)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	n := 0
	for i, p := range out {
		if i > 0 && p == out[n-1] {
			continue
		}
		out[n] = p
		n++
	}
	return out[:n]
}

var batchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		batches, err := storage.NewRepo(db).ListBatches(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(batches)
		}
		if len(batches) == 0 {
			fmt.Println("No batches stored.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "#\tID\tYEAR\tCLASS\tNAMES")
		for i, b := range batches {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i, b.ID, b.AdmissionYear, b.AdmissionClass, strings.Join(b.Names, ", "))
		}
		return w.Flush()
	},
}

var batchDeleteCmd = &cobra.Command{
	Use:   "delete <id|position>",
	Short: "Delete a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWriteLock(func(db *storage.DB) error {
			repo := storage.NewRepo(db)
			batches, err := repo.ListBatches(cmd.Context())
			if err != nil {
				return err
			}
			b, err := pickBatch(batches, args[0])
			if err != nil {
				return err
			}
			if err := repo.DeleteBatch(cmd.Context(), b.ID); err != nil {
				return err
			}
			utils.Log.Infof("Deleted batch %s", b.ID)
			return nil
		})
	},
}

func collectNames(cmd *cobra.Command, args []string) ([]string, error) {
	names := append([]string(nil), args...)
	flagNames, _ := cmd.Flags().GetStringArray("name")
	names = append(names, flagNames...)

	file, _ := cmd.Flags().GetString("names-file")
	if file == "" {
		return names, nil
	}
	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open names file: %w", err)
		}
		defer f.Close()
		r = f
	}
	fromFile, err := readNames(r)
	if err != nil {
		return nil, err
	}
	return append(names, fromFile...), nil
}

// readNames returns one name per line. Lines are not trimmed here; the editor
// does that.
func readNames(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		names = append(names, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read names: %w", err)
	}
	return names, nil
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(batchAddCmd, batchEditCmd, batchListCmd, batchDeleteCmd)

	batchAddCmd.Flags().String("year", "", "Admission year, e.g. 2023/2024")
	batchAddCmd.Flags().String("class", "", "Admission class, e.g. JSS 1")
	batchAddCmd.Flags().StringArray("name", nil, "Student name (repeatable)")
	batchAddCmd.Flags().String("names-file", "", `File with one name per line ("-" for stdin)`)

	batchEditCmd.Flags().String("year", "", "New admission year")
	batchEditCmd.Flags().String("class", "", "New admission class")
	batchEditCmd.Flags().StringArray("add", nil, "Name to add (repeatable)")
	batchEditCmd.Flags().IntSlice("remove", nil, "Position of a name to remove (repeatable)")
	batchEditCmd.Flags().StringArray("rename", nil, "Rename as INDEX=NAME (repeatable)")

	batchListCmd.Flags().Bool("json", false, "Print batches as JSON")
}
