package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/reportcard/apps/di"
	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/backup"
	"github.com/trezcool/reportcard/core/student"
)

var (
	isTerminalFunc = term.IsTerminal // mockable
	createFileFunc = func(name string) (io.WriteCloser, error) { return os.Create(name) } // mockable

	orderByClass = []core.DBOrdering{
		{Field: "grade", Ascending: true},
		{Field: "section", Ascending: true},
		{Field: "name", Ascending: true},
	}

	errNotConfirmed = errors.New("operation not confirmed")
	errNoTerminal   = errors.New("refusing to clear data without --yes outside a terminal")
)

type commandLine struct {
	c    *di.Container
	in   io.Reader
	inFd int
	out  io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Administer the report card assistant data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		cli.migrateCmd(),
		cli.exportCmd(),
		cli.importCmd(),
		cli.backupCmd(),
		cli.clearCmd(),
		cli.studentsCmd(),
	)
	return root
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args[1:])
	root.SetIn(cli.in)
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	return root.Execute()
}

func (cli *commandLine) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export students, comments and settings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			data, err := cli.c.BackupSvc.Export(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, ferr := createFileFunc(output)
				if ferr != nil {
					return errors.Wrap(ferr, "creating export file")
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = errors.Wrap(cerr, "closing export file")
					}
				}()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to FILE instead of stdout")
	return cmd
}

func (cli *commandLine) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE|-",
		Short: "Import a JSON export, replacing the collections it contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			var data backup.Data
			if err = json.NewDecoder(r).Decode(&data); err != nil {
				return errors.Wrap(err, "decoding backup")
			}
			if err = cli.c.BackupSvc.Import(cmd.Context(), data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d students and %d comments\n", len(data.Students), len(data.Comments))
			return nil
		},
	}
}

func (cli *commandLine) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Record a backup, mailing it when a backup email is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := cli.c.BackupSvc.Backup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup %s done\n", data.Filename())
			return nil
		},
	}
}

func (cli *commandLine) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every student, comment and setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				if err := cli.confirm(cmd, "This deletes ALL data. Type 'yes' to continue: "); err != nil {
					return err
				}
			}
			if err := cli.c.BackupSvc.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm prompts on an interactive stdin and expects "yes".
func (cli *commandLine) confirm(cmd *cobra.Command, prompt string) error {
	if !isTerminalFunc(cli.inFd) {
		return errNoTerminal
	}
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	if strings.ToLower(strings.TrimSpace(answer)) != "yes" {
		return errNotConfirmed
	}
	return nil
}

func (cli *commandLine) studentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Manage students",
	}
	cmd.AddCommand(cli.studentsAddCmd(), cli.studentsListCmd())
	return cmd
}

func (cli *commandLine) studentsAddCmd() *cobra.Command {
	var bs student.BulkNewStudents
	cmd := &cobra.Command{
		Use:   "add [FILE|-]",
		Short: "Add one student per line of FILE (or stdin) to a class",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			r, closeFn, err := openInput(cmd, src)
			if err != nil {
				return err
			}
			defer closeFn()

			names, err := io.ReadAll(r)
			if err != nil {
				return errors.Wrap(err, "reading names")
			}
			bs.Names = string(names)

			res, err := cli.c.StudentSvc.BulkCreate(cmd.Context(), bs)
			out := cmd.OutOrStdout()
			for _, s := range res.Skipped {
				fmt.Fprintf(out, "skipped %q: %s\n", s.Name, s.Reason)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "added %d students to %d-%s\n", len(res.Added), bs.Grade, bs.Section)
			return nil
		},
	}
	cmd.Flags().IntVarP(&bs.Grade, "grade", "g", 0, "grade of the students (5-8)")
	cmd.Flags().StringVarP(&bs.Section, "section", "s", "", "section of the students (A-E)")
	_ = cmd.MarkFlagRequired("grade")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}

func (cli *commandLine) studentsListCmd() *cobra.Command {
	var filter student.QueryFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students by class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			students, err := cli.c.StudentSvc.Query(cmd.Context(), filter, orderByClass...)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CLASS\tNAME\tID")
			for _, s := range students {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Label(), s.Name, s.ID)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&filter.Grade, "grade", "g", 0, "only this grade")
	cmd.Flags().StringVarP(&filter.Section, "section", "s", "", "only this section")
	cmd.Flags().StringVar(&filter.Search, "search", "", "only names containing this text")
	return cmd
}

// openInput opens path, or the command's stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening input")
	}
	return f, func() { _ = f.Close() }, nil
}
