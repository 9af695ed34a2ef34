package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	internalApp "github.com/haierkeys/pin-notes-service/internal/app"
	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/dto"

	"github.com/spf13/cobra"
)

// openApp 按配置文件创建 App Container，供命令行子命令直接调用服务层
func openApp(ctx context.Context, config string) (*internalApp.App, error) {
	if config == "" {
		config = findConfig()
	}
	if config == "" {
		return nil, fmt.Errorf("config file not found, pass -c or run the service once to create one")
	}
	cfg, _, err := internalApp.LoadConfig(config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := initStorageWithConfig(cfg); err != nil {
		return nil, err
	}
	return internalApp.NewApp(ctx, cfg, bootstrapLogger)
}

func printNotes(cmd *cobra.Command, notes []*domain.Note) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION\tIMAGE")
	for _, n := range notes {
		image := "-"
		if n.HasImage() {
			image = n.ImageURL
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, n.Name, n.Description, image)
	}
	return w.Flush()
}

func init() {
	var config string

	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes from the command line",
	}
	noteCmd.PersistentFlags().StringVarP(&config, "config", "c", "", "config file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, config)
			if err != nil {
				return err
			}
			defer a.Shutdown(context.Background())

			notes, err := a.NoteService.List(ctx)
			if err != nil {
				return err
			}
			return printNotes(cmd, notes)
		},
	}

	var create dto.NoteCreateRequest
	var imagePath string
	createCmd := &cobra.Command{
		Use:   "create -n name -D description [-i image]",
		Short: "Create a note, optionally with an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var upload *domain.Upload
			if imagePath != "" {
				content, err := os.ReadFile(imagePath)
				if err != nil {
					return err
				}
				upload = &domain.Upload{Content: content}
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, config)
			if err != nil {
				return err
			}
			defer a.Shutdown(context.Background())

			notes, err := a.NoteService.Create(ctx, &create, upload)
			if err != nil {
				return err
			}
			return printNotes(cmd, notes)
		},
	}
	createCmd.Flags().StringVarP(&create.Name, "name", "n", "", "note name, also the image key")
	createCmd.Flags().StringVarP(&create.Description, "description", "D", "", "note description")
	createCmd.Flags().StringVarP(&imagePath, "image", "i", "", "image file")

	var deleteName string
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note and its image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, config)
			if err != nil {
				return err
			}
			defer a.Shutdown(context.Background())

			// 名称为空时服务层会从当前集合查找，先拉取一次集合
			if deleteName == "" {
				if _, err := a.NoteService.List(ctx); err != nil {
					return err
				}
			}
			outcome, err := a.NoteService.Delete(ctx, &dto.NoteDeleteRequest{ID: args[0], Name: deleteName})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", outcome.ID, outcome.State)
			return nil
		},
	}
	deleteCmd.Flags().StringVarP(&deleteName, "name", "n", "", "image key, looked up from the collection when empty")

	noteCmd.AddCommand(listCmd, createCmd, deleteCmd)
	rootCmd.AddCommand(noteCmd)
}
