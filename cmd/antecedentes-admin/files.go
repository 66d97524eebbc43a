// ABOUTME: File commands: staged batch upload, download and delete
// ABOUTME: Each staged file uploads independently; failures are listed as warnings

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/2389/antecedentes/internal/files"
)

func (a *app) cmdFiles(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: files upload|download|delete ...")
	}
	subcmd, args := args[0], args[1:]

	switch subcmd {
	case "upload", "add":
		return a.cmdFilesUpload(ctx, args)
	case "download", "get":
		return a.cmdFilesDownload(ctx, args)
	case "delete", "rm", "remove":
		return a.cmdFilesDelete(ctx, args)
	default:
		return fmt.Errorf("unknown files subcommand: %s (use upload, download, delete)", subcmd)
	}
}

func (a *app) cmdFilesUpload(ctx context.Context, args []string) error {
	f, err := parseFlags(args, []string{"description"}, nil)
	if err != nil {
		return err
	}
	personID, err := f.id(0, "person id")
	if err != nil {
		return err
	}
	if len(f.args) < 2 {
		return fmt.Errorf("usage: files upload <person-id> <path>... [--description D]")
	}
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	staging := files.NewStaging(a.logger)
	defer staging.Close()
	for _, path := range f.args[1:] {
		if _, err := staging.Add(path, f.get("description")); err != nil {
			return err
		}
	}

	r := staging.Upload(ctx, a.client.Files, personID)
	return printUploadReport(r)
}

func printUploadReport(r files.UploadReport) error {
	for _, up := range r.Uploaded {
		success("Uploaded %s (%s, %s) as file %d", up.OriginalFilename, up.Kind(), byteSize(up.FileSize), up.ID)
	}
	for _, w := range r.Warnings {
		warn("%s", w)
	}
	if r.Failed > 0 {
		return fmt.Errorf("%d uploaded, %d failed", len(r.Uploaded), r.Failed)
	}
	return nil
}

func (a *app) cmdFilesDownload(ctx context.Context, args []string) error {
	f, err := parseFlags(args, []string{"out"}, nil)
	if err != nil {
		return err
	}
	id, err := f.id(0, "file id")
	if err != nil {
		return err
	}
	if _, err := a.require(ctx); err != nil {
		return err
	}

	// The server names the file, so download into a temp file first.
	dir := "."
	if out := f.get("out"); out != "" {
		dir = filepath.Dir(out)
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}
	defer os.Remove(tmp.Name())

	name, n, err := a.client.Files.Download(ctx, id, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("writing download: %w", cerr)
	}
	if err != nil {
		return notFound(err, "file", id)
	}

	dest := f.get("out")
	if dest == "" {
		dest = name
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("saving download: %w", err)
	}
	success("Downloaded %s (%s)", dest, byteSize(n))
	return nil
}

func (a *app) cmdFilesDelete(ctx context.Context, args []string) error {
	f, err := parseFlags(args, nil, []string{"yes"})
	if err != nil {
		return err
	}
	id, err := f.id(0, "file id")
	if err != nil {
		return err
	}
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	if !a.confirm(fmt.Sprintf("Delete file %d?", id), f.bool("yes")) {
		fmt.Println("Aborted.")
		return nil
	}
	if err := a.client.Files.Delete(ctx, id); err != nil {
		return notFound(err, "file", id)
	}
	success("Deleted file %d", id)
	return nil
}
