// codehive-admin is the operator CLI: inspect and remove rooms, purge idle
// ones and mint bearer tokens for local development.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/codehive/codehive/auth"
	"github.com/codehive/codehive/config"
	"github.com/codehive/codehive/globals"
	"github.com/codehive/codehive/persistence"
	"github.com/codehive/codehive/retention"
	"github.com/codehive/codehive/types"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "codehive-admin",
		Short:        "administration tool for the codehive collaboration service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.ReadConfiguration(configPath, config.GetFlagSet())
			if err != nil {
				return err
			}
			if cfg.LogLevel != "" {
				globals.AppLogger.SetLevel(hclog.LevelFromString(cfg.LogLevel))
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file or directory")

	roomsCmd := &cobra.Command{
		Use:   "rooms",
		Short: "manage rooms",
	}
	roomsCmd.AddCommand(roomsListCmd(), roomsDeleteCmd(), roomsPurgeCmd())
	rootCmd.AddCommand(roomsCmd, tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openPersister() (persistence.Persister, error) {
	return persistence.NewPersister(cfg)
}

func roomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list all rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			persister, err := openPersister()
			if err != nil {
				return err
			}
			defer persister.Close()
			rooms, err := persister.GetRooms()
			if err != nil {
				return err
			}
			for _, r := range rooms {
				online := 0
				for _, p := range r.Participants {
					if p.Online {
						online++
					}
				}
				fmt.Printf("%s  %-20s host=%s participants=%d online=%d view=%s updated=%s\n",
					r.Id, r.Name, r.HostUserId, len(r.Participants), online, r.CurrentView,
					r.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func roomsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <room-id>",
		Short: "delete one room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			persister, err := openPersister()
			if err != nil {
				return err
			}
			defer persister.Close()
			room := &types.Room{Id: args[0]}
			if err := persister.GetRoom(room); err != nil {
				return err
			}
			if err := persister.DeleteRoom(room); err != nil {
				return err
			}
			fmt.Printf("deleted room %s\n", room.Id)
			return nil
		},
	}
}

func roomsPurgeCmd() *cobra.Command {
	var maxIdle time.Duration
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "delete rooms idle longer than --max-idle",
		RunE: func(cmd *cobra.Command, args []string) error {
			persister, err := openPersister()
			if err != nil {
				return err
			}
			defer persister.Close()
			sweeper := retention.NewSweeper(persister, config.RetentionConfig{MaxIdle: maxIdle})
			removed, err := sweeper.SweepOnce(time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d room(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxIdle, "max-idle", 720*time.Hour, "idle window after which a room is removed")
	return cmd
}

func tokenCmd() *cobra.Command {
	var validity time.Duration
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "mint a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			authenticator, err := auth.NewAuthenticator(cfg)
			if err != nil {
				return err
			}
			token, err := authenticator.GenerateToken(args[0], validity)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&validity, "validity", 24*time.Hour, "token validity")
	return cmd
}
