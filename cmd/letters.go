package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eccowas/admitgen/internal/utils"
	"github.com/eccowas/admitgen/pkg/admission"
	"github.com/eccowas/admitgen/pkg/letter"
	"github.com/eccowas/admitgen/pkg/storage"
)

// lettersCmd represents the letters command
var lettersCmd = &cobra.Command{
	Use:   "letters",
	Short: "List, show and print admission letters",
}

var lettersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every student who gets a letter",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := admission.Entries(cmd.Context(), storage.NewRepo(db))
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No students stored. Add a batch first.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "#\tNAME\tCLASS\tYEAR")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Index, e.Name, e.AdmissionClass, e.AdmissionYear)
		}
		return w.Flush()
	},
}

var lettersShowCmd = &cobra.Command{
	Use:   "show <position|name>",
	Short: "Render the letter for one student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		repo := storage.NewRepo(db)

		entries, err := admission.Entries(cmd.Context(), repo)
		if err != nil {
			return err
		}
		e, err := pickEntry(entries, args[0])
		if err != nil {
			return err
		}
		school, _, err := admission.ActiveSchool(cmd.Context(), repo)
		if err != nil {
			return err
		}
		l := letter.Compose(school, e, time.Now())

		return writeOutput(cmd, func(w io.Writer) error {
			if format, _ := cmd.Flags().GetString("format"); format == "text" {
				s, err := letter.Text(l)
				if err != nil {
					return err
				}
				_, err = io.WriteString(w, s)
				return err
			}
			return letter.Render(w, l)
		})
	},
}

var lettersPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Render every letter into one printable document",
	Long: `Render every letter into one printable document, one A4 sheet per student,
in batch order and then name order. Interrupting stops between letters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		repo := storage.NewRepo(db)

		entries, err := admission.Entries(cmd.Context(), repo)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("no students stored, nothing to print")
		}
		school, _, err := admission.ActiveSchool(cmd.Context(), repo)
		if err != nil {
			return err
		}
		letters := letter.ComposeAll(school, entries, time.Now())

		format, _ := cmd.Flags().GetString("format")
		err = writeOutput(cmd, func(w io.Writer) error {
			return printLetters(cmd.Context(), w, letters, format)
		})
		if err != nil {
			return err
		}
		utils.Log.Infof("Printed %d letters", len(letters))
		return nil
	},
}

func printLetters(ctx context.Context, w io.Writer, letters []letter.Letter, format string) error {
	switch format {
	case "", "html":
		return letter.Print(ctx, w, letters)
	case "text":
		return letter.WriteText(ctx, w, letters)
	}
	return fmt.Errorf("unknown format %q (want html or text)", format)
}

// writeOutput sends fn's output to --output, or stdout when it is unset.
func writeOutput(cmd *cobra.Command, fn func(io.Writer) error) error {
	path, _ := cmd.Flags().GetString("output")
	if path == "" || path == "-" {
		bw := bufio.NewWriter(cmd.OutOrStdout())
		if err := fn(bw); err != nil {
			return err
		}
		return bw.Flush()
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	utils.Log.Infof("Wrote %s", path)
	return nil
}

func init() {
	rootCmd.AddCommand(lettersCmd)
	lettersCmd.AddCommand(lettersListCmd, lettersShowCmd, lettersPrintCmd)

	for _, c := range []*cobra.Command{lettersShowCmd, lettersPrintCmd} {
		c.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
		c.Flags().StringP("format", "f", "html", "Output format: html or text")
	}
}
