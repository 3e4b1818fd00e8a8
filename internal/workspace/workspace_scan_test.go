package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanAllResolvesCrossFileIncludes(t *testing.T) {
	dir := t.TempDir()

	mainPath := filepath.Join(dir, "main.s")
	libPath := filepath.Join(dir, "lib.s")

	mainSrc := ".include \"lib.s\"\n.import foo\n.proc run\n  jsr foo\n.endproc\n"
	libSrc := ".export foo\n.proc foo\n  rts\n.endproc\n"

	if err := os.WriteFile(mainPath, []byte(mainSrc), 0o600); err != nil {
		t.Fatalf("write main.s: %v", err)
	}
	if err := os.WriteFile(libPath, []byte(libSrc), 0o600); err != nil {
		t.Fatalf("write lib.s: %v", err)
	}

	w := New()
	w.SetRoot(dir)
	bag := w.ScanAll([]string{mainPath, libPath})
	if bag.Len() != 0 {
		t.Fatalf("expected no load errors, got %d", bag.Len())
	}

	mainID, ok := w.File(mainPath)
	if !ok {
		t.Fatalf("main.s not registered")
	}
	libID, ok := w.File(libPath)
	if !ok {
		t.Fatalf("lib.s not registered")
	}

	targets := w.Graph.Includes(mainID)
	if len(targets) != 1 || targets[0] != libID {
		t.Fatalf("expected main.s to include lib.s, got %v", targets)
	}

	if len(w.Exports.Names()) == 0 {
		t.Fatalf("expected lib.s's export to be folded into the workspace export map")
	}
}

func TestScanAllCollectsLoadFailuresWithoutAbortingOtherFiles(t *testing.T) {
	dir := t.TempDir()
	okPath := filepath.Join(dir, "ok.s")
	if err := os.WriteFile(okPath, []byte(".proc run\n  rts\n.endproc\n"), 0o600); err != nil {
		t.Fatalf("write ok.s: %v", err)
	}
	missingPath := filepath.Join(dir, "missing.s")

	w := New()
	w.SetRoot(dir)
	bag := w.ScanAll([]string{okPath, missingPath})
	if bag.Len() != 1 {
		t.Fatalf("expected exactly one load failure, got %d", bag.Len())
	}

	if _, ok := w.File(okPath); !ok {
		t.Fatalf("ok.s should still have been scanned despite the sibling failure")
	}
	if _, ok := w.File(missingPath); ok {
		t.Fatalf("missing.s should never have been registered")
	}
}

func TestScanAllIsSafeUnderTheRace(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 32; i++ {
		p := filepath.Join(dir, "f"+string(rune('a'+i))+".s")
		src := ".export sym" + string(rune('a'+i)) + "\n.proc sym" + string(rune('a'+i)) + "\n  rts\n.endproc\n"
		if err := os.WriteFile(p, []byte(src), 0o600); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
		paths = append(paths, p)
	}

	w := New()
	w.SetRoot(dir)
	bag := w.ScanAll(paths)
	if bag.Len() != 0 {
		t.Fatalf("expected no load errors, got %d", bag.Len())
	}
	if len(w.Exports.Names()) != len(paths) {
		t.Fatalf("expected %d distinct exported names, got %d", len(paths), len(w.Exports.Names()))
	}
}
