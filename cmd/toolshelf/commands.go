package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/straye-as/toolshelf/internal/catalog"
	"github.com/straye-as/toolshelf/internal/domain"
	"github.com/straye-as/toolshelf/internal/form"
	"github.com/straye-as/toolshelf/internal/mapper"
	"github.com/straye-as/toolshelf/internal/terminal"
)

func newListCmd(opts *cliOptions) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tools, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(opts)
			a.catalog.Load(cmd.Context())
			a.catalog.SetQuery(search)
			tools := a.catalog.Visible()

			if opts.jsonOutput() {
				return writeJSON(cmd, mapper.ToToolDTOs(tools))
			}
			return terminal.RenderCards(cmd.OutOrStdout(), tools, search)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only show tools whose title, description or tags contain this text")
	return cmd
}

// toolFlags are the form fields settable from the command line
type toolFlags struct {
	title       string
	description string
	author      string
	tags        string
	url         string
	file        string
	coverURL    string
	cover       string
}

func (f *toolFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.title, "title", "", "tool title")
	flags.StringVar(&f.description, "description", "", "tool description")
	flags.StringVar(&f.author, "author", "", "author (optional)")
	flags.StringVar(&f.tags, "tags", "", "comma-separated tags")
	flags.StringVar(&f.url, "url", "", "link to the tool")
	flags.StringVar(&f.file, "file", "", "HTML file to upload as the tool")
	flags.StringVar(&f.coverURL, "cover-url", "", "link to a cover image")
	flags.StringVar(&f.cover, "cover", "", "image file to upload as the cover")
	cmd.MarkFlagsMutuallyExclusive("url", "file")
	cmd.MarkFlagsMutuallyExclusive("cover-url", "cover")
}

// fill copies the flags the user set into the open form. Required fields
// still empty afterwards are asked for interactively.
func (f *toolFlags) fill(cmd *cobra.Command, a *app) error {
	changed := cmd.Flags().Changed
	values := a.form.Values()
	if changed("title") {
		values.Title = f.title
	}
	if changed("description") {
		values.Description = f.description
	}
	if changed("author") {
		values.Author = f.author
	}
	if changed("tags") {
		values.Tags = f.tags
	}

	var err error
	if values.Title == "" {
		if values.Title, err = a.console.Ask("Title", ""); err != nil {
			return err
		}
	}
	if values.Description == "" {
		if values.Description, err = a.console.Ask("Description", ""); err != nil {
			return err
		}
	}
	a.form.SetValues(values)

	if err := attach(a, form.SlotTool, changed("url"), f.url, f.file); err != nil {
		return err
	}
	if err := attach(a, form.SlotCover, changed("cover-url"), f.coverURL, f.cover); err != nil {
		return err
	}

	if a.form.Source(form.SlotTool).Kind() == form.SourceUnset {
		url, err := a.console.Ask("URL", "")
		if err != nil {
			return err
		}
		a.form.SetURL(form.SlotTool, url)
	}
	return nil
}

func attach(a *app, slot form.Slot, urlSet bool, url, path string) error {
	if path != "" {
		file, err := terminal.ReadFile(path)
		if err != nil {
			return err
		}
		return a.form.Pick(slot, file)
	}
	if urlSet {
		a.form.Clear(slot)
		a.form.SetURL(slot, url)
	}
	return nil
}

func newAddCmd(opts *cliOptions) *cobra.Command {
	var flags toolFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tool from a link or an uploaded HTML page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(opts)
			a.catalog.Add()
			if err := flags.fill(cmd, a); err != nil {
				return err
			}
			if err := a.catalog.Submit(cmd.Context()); err != nil {
				return err
			}
			return printFront(cmd, opts, a)
		},
	}
	flags.register(cmd)
	return cmd
}

func newEditCmd(opts *cliOptions) *cobra.Command {
	var flags toolFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a tool; fields not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts)
			tool, err := a.lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.catalog.Edit(tool)
			if err := flags.fill(cmd, a); err != nil {
				return err
			}
			if err := a.catalog.Submit(cmd.Context()); err != nil {
				return err
			}

			updated, _ := a.catalog.Get(tool.ID)
			if opts.jsonOutput() {
				return writeJSON(cmd, mapper.ToToolDTO(&updated))
			}
			return terminal.RenderCards(cmd.OutOrStdout(), []domain.Tool{updated}, "")
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tool and its uploaded files (asks for the admin password)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts)
			tool, err := a.lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			err = a.catalog.Delete(cmd.Context(), tool)
			if errors.Is(err, catalog.ErrCancelled) {
				fmt.Fprintln(os.Stderr, "Deletion cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", tool.Title)
			return nil
		},
	}
}

func newOpenCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Open a tool in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts)
			tool, err := a.lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.catalog.Open(tool)
		},
	}
}

// printFront prints the tool at the front of the list, which is the one
// just created
func printFront(cmd *cobra.Command, opts *cliOptions, a *app) error {
	tools := a.catalog.Tools()
	if len(tools) == 0 {
		return nil
	}
	if opts.jsonOutput() {
		return writeJSON(cmd, mapper.ToToolDTO(&tools[0]))
	}
	return terminal.RenderCards(cmd.OutOrStdout(), tools[:1], "")
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
