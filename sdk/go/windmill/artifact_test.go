// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package windmill

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(&artifactSuite{})

type artifactSuite struct {
	stub   *stubTransport
	client *Client
}

func (s *artifactSuite) SetUpTest(c *check.C) {
	s.stub = &stubTransport{
		Responses: map[string]string{
			"/api/v0/create_artifact": `{}`,
		},
	}
	s.client = &Client{
		Client:   &http.Client{Transport: s.stub},
		APIKey:   "key",
		Endpoint: "https://windmill.example",
	}
}

// decodeParts returns the multipart fields of recorded request i,
// keyed by field name.
func (s *artifactSuite) decodeParts(c *check.C, i int) map[string][]byte {
	req := s.stub.Requests[i]
	mediatype, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	c.Assert(err, check.IsNil)
	c.Check(mediatype, check.Equals, "multipart/form-data")
	mr := multipart.NewReader(strings.NewReader(s.stub.Bodies[i]), params["boundary"])
	parts := map[string][]byte{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		c.Assert(err, check.IsNil)
		buf, err := io.ReadAll(part)
		c.Assert(err, check.IsNil)
		parts[part.FormName()] = buf
	}
	return parts
}

func (s *artifactSuite) TestCreateArtifact(c *check.C) {
	err := s.client.WorkUnit("xid_123", 4).CreateArtifact(context.Background(), "model.bin", []byte{0xde, 0xad, 0xbe, 0xef})
	c.Assert(err, check.IsNil)
	c.Assert(s.stub.Requests, check.HasLen, 1)
	req := s.stub.Requests[0]
	c.Check(req.Method, check.Equals, "POST")
	c.Check(req.URL.Path, check.Equals, "/api/v0/create_artifact")
	c.Check(req.URL.RawQuery, check.Equals, "upload-type=multipart")

	parts := s.decodeParts(c, 0)
	c.Assert(parts, check.HasLen, 2)
	c.Check(string(parts["meta"]), check.Equals, `{"xid":"xid_123","wid":4,"filename":"model.bin"}`)
	c.Check(parts["contents"], check.DeepEquals, []byte{0xde, 0xad, 0xbe, 0xef})
	// Artifact uploads carry no api_key.
	c.Check(strings.Contains(s.stub.Bodies[0], "api_key"), check.Equals, false)
}

func (s *artifactSuite) TestCreateArtifactFromFile(c *check.C) {
	dir := c.MkDir()
	path := dir + "/weights.bin"
	content := []byte("layer0 layer1 layer2")
	c.Assert(os.WriteFile(path, content, 0666), check.IsNil)

	err := s.client.WorkUnit("xid_123", 4).CreateArtifactFromFile(context.Background(), "weights.bin", path)
	c.Assert(err, check.IsNil)
	parts := s.decodeParts(c, 0)
	c.Check(string(parts["meta"]), check.Equals, `{"xid":"xid_123","wid":4,"filename":"weights.bin"}`)
	c.Check(parts["contents"], check.DeepEquals, content)
}

func (s *artifactSuite) TestCreateArtifactFromFileMissing(c *check.C) {
	err := s.client.WorkUnit("xid_123", 4).CreateArtifactFromFile(context.Background(), "nope.bin", c.MkDir()+"/nope.bin")
	c.Check(err, check.NotNil)
	c.Check(s.stub.Requests, check.HasLen, 0)
}

func (s *artifactSuite) TestCreateArtifactFromDirectory(c *check.C) {
	dir := c.MkDir()
	c.Assert(os.WriteFile(dir+"/config.json", []byte(`{"lr":0.1}`), 0666), check.IsNil)
	c.Assert(os.Mkdir(dir+"/checkpoints", 0777), check.IsNil)
	c.Assert(os.WriteFile(dir+"/checkpoints/step100", []byte("state"), 0666), check.IsNil)
	c.Assert(os.Symlink("checkpoints/step100", dir+"/latest"), check.IsNil)

	err := s.client.WorkUnit("xid_123", 4).CreateArtifactFromDirectory(context.Background(), "run.tgz", dir)
	c.Assert(err, check.IsNil)

	parts := s.decodeParts(c, 0)
	c.Check(string(parts["meta"]), check.Equals, `{"xid":"xid_123","wid":4,"filename":"run.tgz"}`)

	gzr, err := gzip.NewReader(bytes.NewReader(parts["contents"]))
	c.Assert(err, check.IsNil)
	defer gzr.Close()
	tr := tar.NewReader(gzr)
	types := map[string]byte{}
	contents := map[string]string{}
	links := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		c.Assert(err, check.IsNil)
		types[hdr.Name] = hdr.Typeflag
		links[hdr.Name] = hdr.Linkname
		buf, err := io.ReadAll(tr)
		c.Assert(err, check.IsNil)
		contents[hdr.Name] = string(buf)
	}
	c.Check(types, check.DeepEquals, map[string]byte{
		"checkpoints/":        tar.TypeDir,
		"checkpoints/step100": tar.TypeReg,
		"config.json":         tar.TypeReg,
		"latest":              tar.TypeSymlink,
	})
	c.Check(contents["config.json"], check.Equals, `{"lr":0.1}`)
	c.Check(contents["checkpoints/step100"], check.Equals, "state")
	c.Check(links["latest"], check.Equals, "checkpoints/step100")
}

func (s *artifactSuite) TestCreateArtifactFromDirectoryMissing(c *check.C) {
	err := s.client.WorkUnit("xid_123", 4).CreateArtifactFromDirectory(context.Background(), "run.tgz", c.MkDir()+"/nope")
	c.Check(err, check.NotNil)
	c.Check(s.stub.Requests, check.HasLen, 0)
}

func (s *artifactSuite) TestCreateArtifactRejected(c *check.C) {
	s.client.Client = &http.Client{Transport: &statusTransport{
		status: "413 Request Entity Too Large",
		code:   413,
		body:   "artifact too large",
	}}
	err := s.client.WorkUnit("xid_123", 4).CreateArtifact(context.Background(), "big.bin", make([]byte, 4))
	c.Assert(err, check.NotNil)
	var apiErr *APIError
	c.Assert(errors.As(err, &apiErr), check.Equals, true)
	c.Check(apiErr.StatusCode, check.Equals, 413)
	c.Check(apiErr.Body, check.Equals, "artifact too large")
}
