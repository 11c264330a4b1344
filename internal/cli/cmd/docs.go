package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zfogg/citysearch/internal/cli/api"
	"github.com/zfogg/citysearch/internal/cli/output"
)

var (
	docIndex   string
	docTitle   string
	docContent string
	docTags    []string
	docSize    int
	docFrom    int
)

var docsCmd = &cobra.Command{
	Use:     "docs",
	Aliases: []string{"documents"},
	Short:   "Manage documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := api.ListDocuments(docIndex, docSize, docFrom)
		if err != nil {
			return err
		}
		return printDocuments(res)
	},
}

var docsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := api.GetDocument(docIndex, args[0])
		if err != nil {
			return err
		}
		return output.PrintRecord(doc.Title,
			[]string{"id", "tags", "created_at", "updated_at", "content"},
			map[string]interface{}{
				"id":         doc.ID,
				"tags":       strings.Join(doc.Tags, ", "),
				"created_at": doc.CreatedAt,
				"updated_at": doc.UpdatedAt,
				"content":    doc.Content,
			})
	},
}

var docsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a document",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := api.CreateDocument(api.DocumentInput{
			Index:   docIndex,
			Title:   docTitle,
			Content: docContent,
			Tags:    docTags,
		})
		if err != nil {
			return err
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", res)
		}
		output.PrintSuccess("Created document %s", res.ID)
		return nil
	},
}

var docsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a document's title, content or tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := api.DocumentPatch{ID: args[0], Index: docIndex}
		if cmd.Flags().Changed("title") {
			patch.Title = &docTitle
		}
		if cmd.Flags().Changed("content") {
			patch.Content = &docContent
		}
		if cmd.Flags().Changed("tags") {
			patch.Tags = docTags
		}
		if patch.Title == nil && patch.Content == nil && patch.Tags == nil {
			return fmt.Errorf("nothing to update: pass --title, --content or --tags")
		}

		res, err := api.UpdateDocument(patch)
		if err != nil {
			return err
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", res)
		}
		output.PrintSuccess("Updated document %s", res.ID)
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.DeleteDocument(docIndex, args[0]); err != nil {
			return err
		}
		output.PrintSuccess("Deleted document %s", args[0])
		return nil
	},
}

func printDocuments(res *api.DocumentResults) error {
	rows := make([][]string, 0, len(res.Hits))
	for _, d := range res.Hits {
		rows = append(rows, []string{d.ID, d.Title, strings.Join(d.Tags, ","), d.CreatedAt})
	}
	if err := output.PrintTable([]string{"ID", "TITLE", "TAGS", "CREATED"}, rows, res); err != nil {
		return err
	}
	if output.GetOutputFormat() != output.FormatJSON {
		output.PrintInfo("%d of %d documents (%dms)", len(res.Hits), res.Total, res.Took)
	}
	return nil
}

func init() {
	docsCmd.PersistentFlags().StringVar(&docIndex, "index", "", "Index name (server default when empty)")

	docsListCmd.Flags().IntVar(&docSize, "size", 10, "Page size")
	docsListCmd.Flags().IntVar(&docFrom, "from", 0, "Offset")

	for _, c := range []*cobra.Command{docsCreateCmd, docsUpdateCmd} {
		c.Flags().StringVar(&docTitle, "title", "", "Document title")
		c.Flags().StringVar(&docContent, "content", "", "Document body")
		c.Flags().StringSliceVar(&docTags, "tags", nil, "Comma-separated tags")
	}
	_ = docsCreateCmd.MarkFlagRequired("title")

	docsCmd.AddCommand(docsListCmd, docsGetCmd, docsCreateCmd, docsUpdateCmd, docsDeleteCmd)
}
