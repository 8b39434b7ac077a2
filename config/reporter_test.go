package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for i, f := range zr.File {
		if i == 0 && f.Name != "MANIFEST" {
			t.Errorf("first entry = %q, want MANIFEST", f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	conf := &ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	sheet := filepath.Join(dir, "theme.qss")
	if err := os.WriteFile(sheet, []byte("QLabel { color: red; }"), 0644); err != nil {
		t.Fatal(err)
	}
	r.Store("stylesheet.qss", sheet)
	r.Store("missing.log", filepath.Join(dir, "nothing-here.log"))
	r.StoreData("config.yaml", []byte("version: 1\n"))
	r.StoreData("config.yaml", []byte("version: 2\n"))
	if err := r.StoreCopy("copy.qss", sheet); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	if err := r.StoreCopy("none.qss", filepath.Join(dir, "none.qss")); err == nil {
		t.Error("StoreCopy() of missing file should fail")
	}

	// Store picks up file content when report is closed
	if err := os.WriteFile(sheet, []byte("QLabel { color: blue; }"), 0644); err != nil {
		t.Fatal(err)
	}

	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readArchive(t, conf.Destination)
	if files["stylesheet.qss"] != "QLabel { color: blue; }" {
		t.Errorf("stylesheet.qss = %q", files["stylesheet.qss"])
	}
	if files["copy.qss"] != "QLabel { color: red; }" {
		t.Errorf("copy.qss = %q", files["copy.qss"])
	}
	if files["config.yaml"] != "version: 1\n" {
		t.Errorf("config.yaml = %q", files["config.yaml"])
	}
	if _, ok := files["missing.log"]; ok {
		t.Error("absent file should not be archived")
	}

	var versioned int
	for name := range files {
		if strings.HasPrefix(name, "config.yaml-") {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("expected one versioned config.yaml, got %d", versioned)
	}
	if lines := strings.Count(files["MANIFEST"], "\n"); lines != 5 {
		t.Errorf("MANIFEST has %d lines:\n%s", lines, files["MANIFEST"])
	}
}

func TestReportStoreOverwrite(t *testing.T) {
	r := &Report{entries: make(map[string]item)}
	r.Store("a", "/tmp/a")
	r.Store("a", "/tmp/a")

	defer func() {
		if recover() == nil {
			t.Error("expected panic when stored file is replaced")
		}
	}()
	r.Store("a", "/tmp/b")
}

func TestReportNil(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy on nil report error = %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name() = %q", r.Name())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]item)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestEntryName(t *testing.T) {
	tests := map[string]string{
		"/some/dir/theme.qss": "stylesheet-theme.qss",
		"theme:dark.qss":      "stylesheet-theme_dark.qss",
		"..hidden.qss":        "stylesheet-hidden.qss",
		"tab\tname.qss":       "stylesheet-tab_name.qss",
		"":                    "stylesheet-unnamed",
	}
	for in, want := range tests {
		if got := EntryName("stylesheet", in); got != want {
			t.Errorf("EntryName(%q) = %q, want %q", in, got, want)
		}
	}
}
