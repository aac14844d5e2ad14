// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"

	"github.com/devblok/prism/utility/kar"
)

func init() {
	currentUserName = "unknown"
	if u, err := user.Current(); err == nil {
		currentUserName = u.Name
	}
}

var (
	currentUserName string
	author          = flag.String("author", "", "Set the author of the package when compressing")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	extract         = flag.String("e", "", "Extract the file given")
	compress        = flag.String("c", "", "Compress the given file/folder")
	dstFile         = flag.String("f", "out.kar", "Destination file")
	dstDir          = flag.String("o", ".", "Destination directory when extracting")
	silent          = flag.Bool("s", false, "Silent")
)

func main() {
	flag.Parse()
	if *silent {
		log.SetLevel(log.WarnLevel)
	}

	var err error
	switch {
	case *extract != "" && *compress != "":
		err = errors.New("only one operation at a time")
	case *extract != "":
		err = extractFiles(*extract, *dstDir)
	case *compress != "":
		err = compressFiles(*compress, *dstFile)
	default:
		flag.PrintDefaults()
		return
	}
	if err != nil {
		log.WithError(err).Error("kar")
		os.Exit(1)
	}
}

func compressFiles(root, dstPath string) error {
	if _, err := os.Stat(dstPath); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	var filesToCompress []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		filesToCompress = append(filesToCompress, path)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "walk")
	}

	name := *author
	if name == "" {
		name = currentUserName
	}
	karBuilder, err := kar.NewBuilder(kar.Header{
		Author:      name,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})
	if err != nil {
		return err
	}
	defer karBuilder.Close()

	for _, ftc := range filesToCompress {
		if err := addFile(karBuilder, root, ftc); err != nil {
			return err
		}
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	n, err := karBuilder.WriteTo(dst)
	if err != nil {
		dst.Close()
		return errors.Wrap(err, dstPath)
	}
	log.WithFields(log.Fields{
		"files": karBuilder.Len(),
		"bytes": n,
	}).Info("archive written")
	return dst.Close()
}

// addFile stores path under its slash separated name relative to root.
func addFile(b *kar.Builder, root, path string) error {
	name, err := filepath.Rel(root, path)
	if err != nil || name == "." {
		name = filepath.Base(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return errors.Wrap(b.Add(filepath.ToSlash(name), f), path)
}

func extractFiles(srcPath, dir string) error {
	r, err := mmap.Open(srcPath)
	if err != nil {
		return err
	}
	defer r.Close()

	archive, err := kar.Open(r)
	if err != nil {
		return errors.Wrap(err, srcPath)
	}
	for _, name := range archive.Names() {
		if strings.Contains(name, "..") {
			return errors.Errorf("%s: refusing to extract %q", srcPath, name)
		}
		data, err := archive.ReadAll(name)
		if err != nil {
			return errors.Wrap(err, name)
		}
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		log.WithField("file", name).Debug("extracted")
	}
	log.WithField("files", len(archive.Names())).Info("archive extracted")
	return nil
}
