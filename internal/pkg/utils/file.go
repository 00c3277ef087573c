package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/pkg/errors"
)

// WriteFile write file to disk
func WriteFile(name string, data []byte) error {
	goapp.Log.Info().Str("name", name).Msg("Save")
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

// FileExists check if file exists
func FileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// SupportVideoExt checks if video ext is supported
func SupportVideoExt(ext string) bool {
	return ext == ".webm" || ext == ".mp4" || ext == ".mov" || ext == ".mkv"
}

// MakeValidateFileName sanitizes the file name and prefixes it with ID
func MakeValidateFileName(ID, fileName string) (string, error) {
	res := filepath.Base(filepath.Clean(fileName))
	if res == "." || res == ".." || res == string(filepath.Separator) {
		return "", errors.Errorf("wrong file name '%s'", fileName)
	}
	ext := filepath.Ext(res)
	res = strings.TrimSuffix(res, ext) + strings.ToLower(ext)
	res = strings.ReplaceAll(res, " ", "_")
	if ID == "" {
		return res, nil
	}
	return ID + "/" + res, nil
}
