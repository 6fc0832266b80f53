package service

import "os"

// Status returns the definition path and whether it exists.
func Status(home, label string) (string, bool) {
	path := Path(home, label)
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return path, false
}

// Remove deletes the definition if present.
func Remove(home, label string) (string, error) {
	path := Path(home, label)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return path, err
	}
	return path, nil
}
