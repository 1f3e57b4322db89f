package autostart

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

func plistPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "LaunchAgents", name+".plist"), nil
}

func xmlString(buf *bytes.Buffer, s string) {
	buf.WriteString("\t\t<string>")
	_ = xml.EscapeText(buf, []byte(s))
	buf.WriteString("</string>\n")
}

func enable(e Entry) error {
	path, err := plistPath(e.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create LaunchAgents dir: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	buf.WriteString("<plist version=\"1.0\">\n<dict>\n")
	buf.WriteString("\t<key>Label</key>\n\t<string>")
	_ = xml.EscapeText(&buf, []byte(e.Name))
	buf.WriteString("</string>\n")
	buf.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n")
	xmlString(&buf, e.Exec)
	for _, a := range e.Args {
		xmlString(&buf, a)
	}
	buf.WriteString("\t</array>\n")
	buf.WriteString("\t<key>RunAtLoad</key>\n\t<true/>\n")
	buf.WriteString("</dict>\n</plist>\n")

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write launch agent: %w", err)
	}
	return nil
}

func disable(name string) error {
	path, err := plistPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove launch agent: %w", err)
	}
	return nil
}

func isEnabled(name string) (bool, error) {
	path, err := plistPath(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
