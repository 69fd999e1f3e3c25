// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package windmill

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

type artifactMeta struct {
	XID      string `json:"xid"`
	WID      int64  `json:"wid"`
	Filename string `json:"filename"`
}

// CreateArtifact uploads contents as an artifact of this work unit,
// stored server-side under the given filename. The upload is a
// single multipart request: a "meta" part identifying the work unit
// and filename, and a "contents" part carrying the bytes.
func (wu *WorkUnit) CreateArtifact(ctx context.Context, filename string, contents []byte) error {
	meta, err := json.Marshal(artifactMeta{
		XID:      wu.XID,
		WID:      wu.WID,
		Filename: filename,
	})
	if err != nil {
		return err
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, part := range []struct {
		field string
		data  []byte
	}{
		{"meta", meta},
		{"contents", contents},
	} {
		w, err := mw.CreateFormFile(part.field, part.field)
		if err != nil {
			return err
		}
		if _, err = w.Write(part.data); err != nil {
			return err
		}
	}
	if err = mw.Close(); err != nil {
		return err
	}
	urlString := wu.client.apiURL("create_artifact") + "?upload-type=multipart"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlString, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return wu.client.DoAndDecode(nil, req)
}

// CreateArtifactFromFile uploads the file at localPath as an
// artifact of this work unit, stored under the given filename. The
// file is read fully into memory first.
func (wu *WorkUnit) CreateArtifactFromFile(ctx context.Context, filename, localPath string) error {
	contents, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	return wu.CreateArtifact(ctx, filename, contents)
}

// CreateArtifactFromDirectory archives the directory at localDir
// into a gzip-compressed tar archive, built in memory, and uploads
// it as an artifact stored under the given filename (which would
// conventionally end in ".tgz" or ".tar.gz").
func (wu *WorkUnit) CreateArtifactFromDirectory(ctx context.Context, filename, localDir string) error {
	contents, err := archiveDirectory(localDir)
	if err != nil {
		return err
	}
	return wu.CreateArtifact(ctx, filename, contents)
}

// archiveDirectory returns a tar.gz archive of the given directory.
// Entry names are relative to dir. Directories and symlinks are
// preserved (symlinks are not followed); sockets and other irregular
// files are skipped.
func archiveDirectory(dir string) ([]byte, error) {
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)
	err := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		var link string
		switch {
		case fi.Mode()&os.ModeSymlink != 0:
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		case !fi.Mode().IsRegular() && !fi.IsDir():
			return nil
		}
		hdr, err := tar.FileInfoHeader(fi, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if fi.IsDir() {
			hdr.Name += "/"
		}
		if err = tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err = tw.Close(); err != nil {
		return nil, err
	}
	if err = gzw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
