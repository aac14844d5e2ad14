// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func TestAddAndWrite(t *testing.T) {
	builder, err := NewBuilder(Header{
		Author:      "devblok",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer builder.Close()

	if err := builder.Add("test", strings.NewReader("idunvovkjnreovmegihjbrqlkmfrjnb")); err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("test2", strings.NewReader("idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb")); err != nil {
		t.Fatal(err)
	}
	if len(builder.files) != 2 {
		t.Error("incorrect number of files present")
	}

	var buf bytes.Buffer
	num, err := builder.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if num != int64(buf.Len()) {
		t.Errorf("reported %d bytes, wrote %d", num, buf.Len())
	}
	if !bytes.HasPrefix(buf.Bytes(), magic[:]) {
		t.Error("magic missing")
	}
}

func TestAddReplacesName(t *testing.T) {
	builder, err := NewBuilder(Header{Author: "devblok"})
	if err != nil {
		t.Fatal(err)
	}
	defer builder.Close()

	builder.Add("test", strings.NewReader("first"))
	builder.Add("test", strings.NewReader("second"))
	if len(builder.files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(builder.files))
	}
	if builder.files[0].Size != int64(len("second")) {
		t.Errorf("kept the wrong entry: %+v", builder.files[0])
	}
}

func TestCloseRemovesTemp(t *testing.T) {
	builder, err := NewBuilder(Header{})
	if err != nil {
		t.Fatal(err)
	}
	builder.Add("test", strings.NewReader("data"))
	if err := builder.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(builder.tempDir); !os.IsNotExist(err) {
		t.Errorf("temp dir still present: %v", err)
	}
}
