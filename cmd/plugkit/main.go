// Command plugkit inspects and maintains plugin configuration files.
//
// Usage:
//
//	plugkit version                      - Show version information
//	plugkit compare <a> <b>              - Compare two version strings
//	plugkit alloc <path>                 - Print the first free sibling of path
//	plugkit get <file> <key>             - Print the value stored under key
//	plugkit keys <file>                  - List every key of a document
//	plugkit load --defaults D --target T - Reconcile configuration files once
//	plugkit watch --defaults D --target T - Reconcile on an interval
//
// Settings are read from ~/.plugkit/settings.yaml.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lc/plugkit/internal/buildinfo"
	"github.com/lc/plugkit/internal/log"
	"github.com/lc/plugkit/internal/settings"
	"github.com/lc/plugkit/pkg/document"
	"github.com/lc/plugkit/pkg/filesys"
	"github.com/lc/plugkit/pkg/version"
)

func main() {
	st, err := settings.New().Load()
	if err != nil {
		log.Fatalf("settings error: %v", err)
	}
	if os.Getenv("LOG_LEVEL") == "" {
		if err := log.SetLevel(st.Log.Level); err != nil {
			log.Warnf("ignoring log level: %v", err)
		}
	}
	defer log.Sync()

	root := &cobra.Command{
		Use:   "plugkit",
		Short: "Plugin configuration toolkit",
		Long: `plugkit maintains versioned plugin configuration files.
It writes missing files from defaults, archives outdated files as
"outdated <name>" and keeps user comments intact.`,
		SilenceUsage: true,
	}

	// ---- version command ----
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("version: %s\n", buildinfo.Version)
			fmt.Printf("commit: %s\n", buildinfo.Commit)
		},
	}

	// ---- compare command ----
	compareCmd := &cobra.Command{
		Use:     "compare <a> <b>",
		Short:   "Compare two dotted version strings",
		Long:    `Compare two versions component by component. Missing components count as 0, so 1.2 equals 1.2.0.`,
		Example: "plugkit compare 2.0 1.9.9",
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := version.Parse(args[0])
			if err != nil {
				return err
			}
			b, err := version.Parse(args[1])
			if err != nil {
				return err
			}

			op := "="
			switch a.Compare(b) {
			case -1:
				op = "<"
			case 1:
				op = ">"
			}
			color.New(color.FgHiWhite).Printf("%s ", a)
			color.New(color.FgHiYellow, color.Bold).Printf("%s ", op)
			color.New(color.FgHiWhite).Printf("%s\n", b)
			return nil
		},
	}

	// ---- alloc command ----
	allocCmd := &cobra.Command{
		Use:     "alloc <path>",
		Short:   "Print the first sibling path that does not exist yet",
		Example: `plugkit alloc "plugins/Shop/outdated config.yml"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := filesys.UniquePath(filesys.OS(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(p)
			return nil
		},
	}

	// ---- get command ----
	getCmd := &cobra.Command{
		Use:   "get <file> <key>",
		Short: "Print the value stored under a dotted key",
		Long: `Print the value stored under a dotted key. Sections whose name
contains a dot are quoted: Worlds.'world.nether'.Enabled`,
		Example: "plugkit get config.yml General.Prefix",
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if s, ok := doc.GetString(args[1]); ok {
				fmt.Println(s)
				return nil
			}
			n, ok := doc.Node(args[1])
			if !ok {
				return fmt.Errorf("key %q not found in %s", args[1], args[0])
			}
			out, err := yaml.Marshal(n)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}

	// ---- keys command ----
	keysCmd := &cobra.Command{
		Use:     "keys <file>",
		Short:   "List the keys of a configuration document",
		Example: "plugkit keys config.yml",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if doc.Len() == 0 {
				color.Yellow("No keys found.")
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Key", "Value"})
			table.SetHeaderColor(
				tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
				tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
			)
			table.SetBorder(false)
			table.SetAutoWrapText(false)
			table.SetColumnColor(
				tablewriter.Colors{tablewriter.FgGreenColor},
				tablewriter.Colors{tablewriter.FgHiWhiteColor},
			)
			for _, k := range doc.Keys() {
				table.Append([]string{k, summarize(doc, k)})
			}
			table.Render()
			return nil
		},
	}

	root.AddCommand(versionCmd, compareCmd, allocCmd, getCmd, keysCmd, newLoadCmd(st), newWatchCmd(st))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func readDocument(path string) (*document.Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// summarize renders the value under key on one line.
func summarize(doc *document.Document, key string) string {
	n, ok := doc.Node(key)
	if !ok {
		return ""
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return fmt.Sprintf("[%d items]", len(n.Content))
			}
			items = append(items, c.Value)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case yaml.MappingNode:
		return "{}"
	default:
		return ""
	}
}
