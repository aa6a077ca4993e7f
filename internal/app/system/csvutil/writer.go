// internal/app/system/csvutil/writer.go
package csvutil

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Attachment sets the download headers, writes a UTF-8 BOM so spreadsheet
// apps pick the right encoding, and returns a CRLF csv.Writer on w.
// The caller must Flush it.
func Attachment(w http.ResponseWriter, filename string) *csv.Writer {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	_, _ = w.Write(utf8BOM)
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return cw
}
