package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eccowas/admitgen/internal/server"
	"github.com/eccowas/admitgen/internal/utils"
)

// webCmd represents the web command
var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the admitgen web interface",
	Long:  `Start a web server to enter school and student details, preview letters and print them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := renamePolicy()
		if err != nil {
			return err
		}
		path, err := dbPathFromConfig()
		if err != nil {
			return err
		}
		lock, err := utils.NewDBLock(path)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		// Auth
		user := viper.GetString("web.username")
		pass := viper.GetString("web.password")
		addr := viper.GetString("web.bind")

		srv := server.New(db, policy, user, pass)
		srv.Lock = lock
		if err := srv.Start(addr); err != nil {
			utils.Log.Errorf("Server failed: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(webCmd)

	webCmd.Flags().StringP("bind", "b", ":9999", "Address to bind the server to")
	webCmd.Flags().StringP("username", "u", "", "Username for basic auth (optional)")
	webCmd.Flags().StringP("password", "p", "", "Password for basic auth (optional)")

	viper.BindPFlag("web.bind", webCmd.Flags().Lookup("bind"))
	viper.BindPFlag("web.username", webCmd.Flags().Lookup("username"))
	viper.BindPFlag("web.password", webCmd.Flags().Lookup("password"))
}
