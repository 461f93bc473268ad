package efi

import "testing"

func TestStatusClassification(t *testing.T) {
	specs := []struct {
		st         Status
		expError   bool
		expWarning bool
	}{
		{StatusSuccess, false, false},
		{WarnUnknownGlyph, false, true},
		{WarnResetRequired, false, true},
		{ErrLoadError, true, false},
		{ErrBufferTooSmall, true, false},
		{ErrInvalidParameter, true, false},
		{ErrHTTPError, true, false},
	}

	for specIndex, spec := range specs {
		if got := spec.st.IsError(); got != spec.expError {
			t.Errorf("[spec %d] expected IsError to return %t for %s; got %t", specIndex, spec.expError, spec.st, got)
		}
		if got := spec.st.IsWarning(); got != spec.expWarning {
			t.Errorf("[spec %d] expected IsWarning to return %t for %s; got %t", specIndex, spec.expWarning, spec.st, got)
		}
	}
}

func TestStatusCodeValues(t *testing.T) {
	specs := []struct {
		st      Status
		expCode uintptr
	}{
		{WarnBufferTooSmall, 4},
		{ErrLoadError, 1},
		{ErrInvalidParameter, 2},
		{ErrBufferTooSmall, 5},
		{ErrOutOfResources, 9},
		{ErrEndOfMedia, 28},
		{ErrEndOfFile, 31},
		{ErrHTTPError, 35},
	}

	for specIndex, spec := range specs {
		code := uintptr(spec.st) &^ uintptr(statusErrorBit)
		if code != spec.expCode {
			t.Errorf("[spec %d] expected %s to carry code %d; got %d", specIndex, spec.st, spec.expCode, code)
		}
	}
}

func TestStatusString(t *testing.T) {
	specs := []struct {
		st  Status
		exp string
	}{
		{StatusSuccess, "EFI_SUCCESS"},
		{WarnFileSystem, "EFI_WARN_FILE_SYSTEM"},
		{ErrBufferTooSmall, "EFI_BUFFER_TOO_SMALL"},
		{ErrSecurityViolation, "EFI_SECURITY_VIOLATION"},
		{Status(0xbad), "EFI_UNKNOWN_STATUS"},
	}

	for specIndex, spec := range specs {
		if got := spec.st.String(); got != spec.exp {
			t.Errorf("[spec %d] expected to get %q; got %q", specIndex, spec.exp, got)
		}
	}
}
