package views

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/estudiopampa/portal/pkg/portalsdk"
)

// Documents dispatches the document verbs: list (default), get, create,
// delete.
func (v *Views) Documents(ctx context.Context, args []string) error {
	verb, rest := splitVerb(args)
	switch verb {
	case "", "list":
		return v.listDocuments(ctx, rest)
	case "get":
		return v.getDocument(ctx, rest)
	case "create":
		return v.createDocument(ctx, rest)
	case "update":
		return v.updateDocument(ctx, rest)
	case "delete":
		return v.deleteDocument(ctx, rest)
	default:
		return fmt.Errorf("unknown documents verb %q", verb)
	}
}

var documentHeader = []string{"ID", "USER", "TYPE", "DATE", "FILE"}

func documentRows(documents []portalsdk.Document) [][]string {
	rows := make([][]string, 0, len(documents))
	for _, d := range documents {
		rows = append(rows, []string{
			strconv.FormatInt(d.ID, 10),
			strconv.FormatInt(d.UserID, 10),
			d.Type,
			d.Date.String(),
			d.File,
		})
	}
	return rows
}

func (v *Views) listDocuments(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("documents list", flag.ContinueOnError)
	fs.SetOutput(v.out)
	user := fs.Int64("user", 0, "filter by user id")
	page := fs.Int("page", 0, "page number")
	pageSize := fs.Int("page-size", 0, "results per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, done := v.fetchCtx(ctx, "documents")
	defer done()
	finish := v.loading("documents")
	defer finish()

	current, err := v.sdk.ListDocuments(ctx, portalsdk.DocumentFilter{
		UserID:      *user,
		ListOptions: portalsdk.ListOptions{Page: *page, PageSize: *pageSize},
	})
	if err != nil {
		return err
	}

	v.table(documentHeader, documentRows(current.Results))
	v.pageFooter(current.Count, len(current.Results), current.HasNext())
	return nil
}

func (v *Views) getDocument(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	d, err := v.sdk.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	v.table(documentHeader, documentRows([]portalsdk.Document{*d}))
	return nil
}

func (v *Views) createDocument(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("documents create", flag.ContinueOnError)
	fs.SetOutput(v.out)
	user := fs.Int64("user", 0, "owning user id")
	docType := fs.String("type", "", "document type")
	file := fs.String("file", "", "path to the document PDF")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	attachment, err := portalsdk.AttachmentFromFile(*file)
	if err != nil {
		return err
	}

	d, err := v.sdk.CreateDocument(ctx, portalsdk.CreateDocumentInput{
		UserID: *user,
		Type:   *docType,
		File:   attachment,
	})
	if err != nil {
		return err
	}
	v.printf("filed document %d (%s)\n", d.ID, d.Type)
	return nil
}

func (v *Views) updateDocument(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("documents update", flag.ContinueOnError)
	fs.SetOutput(v.out)
	id := fs.Int64("id", 0, "document id")
	user := fs.Int64("user", 0, "owning user id")
	docType := fs.String("type", "", "document type")
	file := fs.String("file", "", "path to the replacement PDF")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("-id is required")
	}

	// Replacing the PDF replaces the whole document; without a file only
	// the named fields change.
	if *file != "" {
		attachment, err := portalsdk.AttachmentFromFile(*file)
		if err != nil {
			return err
		}
		d, err := v.sdk.UpdateDocument(ctx, *id, portalsdk.CreateDocumentInput{
			UserID: *user,
			Type:   *docType,
			File:   attachment,
		})
		if err != nil {
			return err
		}
		v.printf("updated document %d (%s)\n", d.ID, d.Type)
		return nil
	}

	fields := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "user":
			fields["user"] = *user
		case "type":
			fields["type"] = *docType
		}
	})
	if len(fields) == 0 {
		return fmt.Errorf("nothing to update")
	}

	d, err := v.sdk.PatchDocument(ctx, *id, fields)
	if err != nil {
		return err
	}
	v.printf("updated document %d (%s)\n", d.ID, d.Type)
	return nil
}

func (v *Views) deleteDocument(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	d, err := v.sdk.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if !v.confirm(fmt.Sprintf("delete document %d (%s)?", d.ID, d.Type)) {
		v.printf("aborted\n")
		return nil
	}

	if err := v.sdk.DeleteDocument(ctx, id); err != nil {
		return err
	}
	v.printf("deleted document %d\n", id)
	return nil
}
