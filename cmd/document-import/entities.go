// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Dmazeio/document-import-poc/internal/resolve"
	"github.com/Dmazeio/document-import-poc/internal/template"
	"github.com/Dmazeio/document-import-poc/pkg/types"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "Manage the local entity directory (seed, list)",
	Long: `Entities manages a local SQLite directory of controlled vocabularies.
The directory supplements a template's embedded entity lists during
processing; pass it to 'process' with --entities-db.`,
}

var entitiesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a template's vocabularies into the directory",
	RunE:  runEntitiesSeed,
}

func runEntitiesSeed(cmd *cobra.Command, args []string) error {
	templatePath, _ := cmd.Flags().GetString("template")
	dbPath, _ := cmd.Flags().GetString("db")

	tpl, err := template.Load(templatePath)
	if err != nil {
		return err
	}

	dir, err := resolve.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer dir.Close()

	if err := dir.Seed(tpl.Entities); err != nil {
		return err
	}
	// People records are emitted as "user" references downstream.
	if _, ok := tpl.Entities["people"]; ok {
		if err := dir.SetSchema("people", types.EntitySchema{
			DisplayField: "name", IDField: "id", Wrapper: "user",
		}); err != nil {
			return err
		}
	}

	total := 0
	for _, records := range tpl.Entities {
		total += len(records)
	}
	fmt.Printf("Seeded %d record(s) across %d vocabulary(ies) into %s\n", total, len(tpl.Entities), dbPath)
	return nil
}

var entitiesListCmd = &cobra.Command{
	Use:   "list [entity-type]",
	Short: "List vocabularies, or the records of one entity type",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEntitiesList,
}

func runEntitiesList(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")

	dir, err := resolve.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer dir.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if len(args) == 1 {
		records, err := dir.Lookup(args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Printf("No records for entity type %q\n", args[0])
			return nil
		}
		fmt.Fprintln(w, "ID\tNAME")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\n", rec.ID, rec.Name)
		}
		return nil
	}

	entityTypes, err := dir.Types()
	if err != nil {
		return err
	}
	if len(entityTypes) == 0 {
		fmt.Println("The directory is empty.")
		return nil
	}
	fmt.Fprintln(w, "ENTITY TYPE\tRECORDS")
	for _, et := range entityTypes {
		records, err := dir.Lookup(et)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\n", et, len(records))
	}
	return nil
}

func init() {
	entitiesSeedCmd.Flags().String("template", "", "import template file (required)")
	entitiesSeedCmd.Flags().String("db", "entities.db", "SQLite directory file")
	_ = entitiesSeedCmd.MarkFlagRequired("template")

	entitiesListCmd.Flags().String("db", "entities.db", "SQLite directory file")

	entitiesCmd.AddCommand(entitiesSeedCmd)
	entitiesCmd.AddCommand(entitiesListCmd)
	rootCmd.AddCommand(entitiesCmd)
}
