package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eccowas/admitgen/internal/utils"
	"github.com/eccowas/admitgen/pkg/admission"
	"github.com/eccowas/admitgen/pkg/images"
	"github.com/eccowas/admitgen/pkg/letter"
	"github.com/eccowas/admitgen/pkg/storage"
)

// schoolCmd represents the school command
var schoolCmd = &cobra.Command{
	Use:   "school",
	Short: "Manage the school profile printed on the letterhead",
	Long: `Manage school profiles. Only the first stored profile is used on letters;
empty fields fall back to the built-in letterhead.`,
}

var schoolAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new school profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWriteLock(func(db *storage.DB) error {
			ed := admission.NewSchoolEditor(storage.NewRepo(db))
			if err := applySchoolFlags(cmd.Context(), cmd, ed); err != nil {
				return err
			}
			saved, err := ed.Commit(cmd.Context())
			if err != nil {
				printValidation(err)
				return err
			}
			utils.Log.Infof("Saved school %s (%s)", letter.Or(letter.FieldSchoolName, saved.SchoolName), saved.ID)
			return nil
		})
	},
}

var schoolEditCmd = &cobra.Command{
	Use:   "edit <id|position>",
	Short: "Change fields of a stored school profile",
	Long:  "Change fields of a stored school profile. Only the flags given are changed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWriteLock(func(db *storage.DB) error {
			repo := storage.NewRepo(db)
			schools, err := repo.ListSchools(cmd.Context())
			if err != nil {
				return err
			}
			current, err := pickSchool(schools, args[0])
			if err != nil {
				return err
			}
			ed := admission.EditSchool(repo, current)
			if err := applySchoolFlags(cmd.Context(), cmd, ed); err != nil {
				return err
			}
			saved, err := ed.Commit(cmd.Context())
			if err != nil {
				printValidation(err)
				return err
			}
			utils.Log.Infof("Updated school %s", saved.ID)
			return nil
		})
	},
}

var schoolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored school profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		schools, err := storage.NewRepo(db).ListSchools(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(schools)
		}
		if len(schools) == 0 {
			fmt.Println("No school profile stored. Letters use the default letterhead.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "#\tID\tNAME\tEMAIL\tPHONES\tISSUED\tDEADLINE")
		for i, s := range schools {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", i, s.ID, s.SchoolName, s.Email, letter.Phones(s.Phone1, s.Phone2), s.DateIssued, s.Deadline)
		}
		return w.Flush()
	},
}

var schoolDeleteCmd = &cobra.Command{
	Use:   "delete <id|position>",
	Short: "Delete a school profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWriteLock(func(db *storage.DB) error {
			repo := storage.NewRepo(db)
			schools, err := repo.ListSchools(cmd.Context())
			if err != nil {
				return err
			}
			s, err := pickSchool(schools, args[0])
			if err != nil {
				return err
			}
			if err := repo.DeleteSchool(cmd.Context(), s.ID); err != nil {
				return err
			}
			utils.Log.Infof("Deleted school %s", s.ID)
			return nil
		})
	},
}

// applySchoolFlags copies every changed field flag into the editor. Image
// flags take a file path or URL.
func applySchoolFlags(ctx context.Context, cmd *cobra.Command, ed *admission.SchoolEditor) error {
	flags := cmd.Flags()
	for _, f := range admission.SchoolFields {
		name := kebab(f.Name)
		if !flags.Changed(name) {
			continue
		}
		value, _ := flags.GetString(name)
		if f.Type == "image" && value != "" {
			uri, err := images.Load(ctx, value)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", f.Label, err)
			}
			value = uri
		}
		if err := ed.Set(f.Name, value); err != nil {
			return err
		}
	}

	if discover, _ := flags.GetBool("logo-from-website"); discover {
		site := ed.Profile().Website
		if site == "" {
			return fmt.Errorf("--logo-from-website needs a website")
		}
		uri, err := images.Discover(ctx, site)
		if err != nil {
			return fmt.Errorf("failed to find a logo on %s: %w", site, err)
		}
		return ed.Set("logo", uri)
	}
	return nil
}

func addSchoolFieldFlags(cmd *cobra.Command) {
	for _, f := range admission.SchoolFields {
		usage := f.Label
		if f.Type == "image" {
			usage += " (image file path or URL)"
		} else if f.Type == "date" {
			usage += " (YYYY-MM-DD)"
		}
		cmd.Flags().String(kebab(f.Name), "", usage)
	}
	cmd.Flags().Bool("logo-from-website", false, "Fetch the logo from the school website")
}

func init() {
	rootCmd.AddCommand(schoolCmd)
	schoolCmd.AddCommand(schoolAddCmd, schoolEditCmd, schoolListCmd, schoolDeleteCmd)

	addSchoolFieldFlags(schoolAddCmd)
	addSchoolFieldFlags(schoolEditCmd)
	schoolListCmd.Flags().Bool("json", false, "Print profiles as JSON")
}
