// Copyright 2025.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package services

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"go.uber.org/zap/zaptest"
)

type fakeStreamer struct {
	received string
	err      error
}

func (f *fakeStreamer) Stream(_ context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.received = string(data)
	return f.err
}

const dumpContent = "CREATE TABLE product (id INT);\n" +
	"/*!50017 DEFINER=`admin`@`%` */ CREATE TRIGGER t BEFORE INSERT ON product FOR EACH ROW SET @x = 1;\n" +
	"INSERT INTO product VALUES (1);\n"

func TestImportServiceLoad_PlainDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.sql")
	writeFile(t, path, dumpContent)

	streamer := &fakeStreamer{}
	svc := NewImportService(zaptest.NewLogger(t).Sugar(), streamer)

	artifact := &domain.DumpArtifact{LocalPath: path}
	if err := svc.Load(context.Background(), artifact); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !strings.HasPrefix(streamer.received, "SET FOREIGN_KEY_CHECKS=0;") {
		t.Error("stream does not start with the session prelude")
	}
	if !strings.HasSuffix(streamer.received, "SET UNIQUE_CHECKS=1;\n") {
		t.Error("stream does not end with the session epilogue")
	}
	if strings.Contains(streamer.received, "DEFINER") {
		t.Error("definer clause reached the client")
	}
	if !strings.Contains(streamer.received, "INSERT INTO product VALUES (1);") {
		t.Error("row data missing from stream")
	}

	prelude := strings.Index(streamer.received, "NO_AUTO_VALUE_ON_ZERO")
	body := strings.Index(streamer.received, "CREATE TABLE product")
	if prelude == -1 || body == -1 || prelude > body {
		t.Error("prelude must precede the dump body")
	}
}

func TestImportServiceLoad_CompressedDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.sql.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(dumpContent)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	streamer := &fakeStreamer{}
	svc := NewImportService(zaptest.NewLogger(t).Sugar(), streamer)

	artifact := &domain.DumpArtifact{LocalPath: path, Compressed: true}
	if err := svc.Load(context.Background(), artifact); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !strings.Contains(streamer.received, "CREATE TABLE product") {
		t.Error("decompressed dump body missing from stream")
	}
	if strings.Contains(streamer.received, "DEFINER") {
		t.Error("definer clause reached the client")
	}
}

func TestImportServiceLoad_ClientFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.sql")
	writeFile(t, path, dumpContent)

	streamer := &fakeStreamer{err: &domain.CommandError{ExitCode: 1, Stderr: "ERROR 1064 (42000)\n"}}
	svc := NewImportService(zaptest.NewLogger(t).Sugar(), streamer)

	err := svc.Load(context.Background(), &domain.DumpArtifact{LocalPath: path})
	var importErr *domain.ImportError
	if !errors.As(err, &importErr) {
		t.Fatalf("Load() error = %v, want *domain.ImportError", err)
	}
	if importErr.Stderr != "ERROR 1064 (42000)" {
		t.Errorf("Stderr = %q, want client stderr", importErr.Stderr)
	}
}

func TestImportServiceLoad_MissingFile(t *testing.T) {
	svc := NewImportService(zaptest.NewLogger(t).Sugar(), &fakeStreamer{})

	err := svc.Load(context.Background(), &domain.DumpArtifact{LocalPath: "/nonexistent/dump.sql"})
	var importErr *domain.ImportError
	if !errors.As(err, &importErr) {
		t.Fatalf("Load() error = %v, want *domain.ImportError", err)
	}
}
