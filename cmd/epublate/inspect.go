package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epublate/epublate/epub"
	"github.com/epublate/epublate/markup"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.epub>",
	Short: "Show a book's chapters and translatable text volume",
	Long: `Open a book without translating anything and print its metadata, the
chapters in reading order, and how much text each one carries. Useful for
estimating cost before a run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := epub.Open(args[0])
		if err != nil {
			return err
		}

		if title := book.Title(); title != "" {
			fmt.Printf("Title:    %s\n", title)
		}
		if creator := book.Creator(); creator != "" {
			fmt.Printf("Creator:  %s\n", creator)
		}
		if lang := book.Language(); lang != "" {
			fmt.Printf("Language: %s\n", lang)
		}
		fmt.Printf("Entries:  %d\n\n", len(book.Entries()))

		chapters := book.Chapters()
		var totalNodes, totalChars int
		for i, ch := range chapters {
			entry, ok := book.Entry(ch.Path)
			if !ok {
				continue
			}

			doc, err := markup.Parse(ch.Path, entry.Data)
			if err != nil {
				fmt.Printf("%3d  %-40s  (malformed: %v)\n", i+1, ch.Path, err)
				continue
			}

			var nodes, chars int
			for n := range doc.TextNodes() {
				nodes++
				chars += len(n.Text)
			}
			totalNodes += nodes
			totalChars += chars
			fmt.Printf("%3d  %-40s  %5d nodes  %8d chars\n", i+1, ch.Path, nodes, chars)
		}

		fmt.Printf("\n%d chapters, %d text nodes, %d characters\n", len(chapters), totalNodes, totalChars)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
