package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Reserialize parses a JSON document and encodes it again. Numbers keep
// their literal form.
func Reserialize(data []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var v interface{}
	if err := decoder.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}

	return json.Marshal(v)
}

// WriteFile writes data followed by a newline, creating or truncating path.
func WriteFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if _, err := f.Write([]byte("\n")); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
