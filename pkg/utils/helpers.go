package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

//InSlice returns true if given string appears in given slice
func InSlice(lookingFor string, slice []string) bool {
	for _, s := range slice {
		if s == lookingFor {
			return true
		}
	}

	return false
}

//ListDir returns a list of files/ directories in given path
func ListDir(path string) ([]string, error) {
	names := make([]string, 0)
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrap(err, "ListDir")
	}

	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names, nil
}

//LatestFile returns the path of the most recently modified regular file in dir having given extension.
//An empty string is returned (without error) when there is no such file.
func LatestFile(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(err, "LatestFile")
	}

	latest := ""
	var latestMod int64
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = filepath.Join(dir, e.Name())
			latestMod = mod
		}
	}

	return latest, nil
}

//TrimExtension returns file name without its extension ("game.mp4" -> "game")
func TrimExtension(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

//ParseRGB parses "r,g,b" (spaces allowed) into three 0-255 channels
func ParseRGB(s string) ([3]uint8, error) {
	var res [3]uint8

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return res, errors.Errorf("ParseRGB: expected 3 comma separated channels, got %q", s)
	}

	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return res, errors.Wrapf(err, "ParseRGB: channel %d of %q", i, s)
		}
		if v < 0 || v > 255 {
			return res, errors.Errorf("ParseRGB: channel %d of %q out of range", i, s)
		}
		res[i] = uint8(v)
	}

	return res, nil
}

//EnsureDirs creates every missing directory of given list
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0766); err != nil {
			return errors.Wrapf(err, "EnsureDirs: creating '%s'", dir)
		}
	}
	return nil
}
