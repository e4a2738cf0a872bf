// Gói export ghi các dòng đã chuẩn hóa ra file CSV nén gzip.
// Dòng được stream thẳng xuống file, không buffer cả result set trong bộ nhớ.

package export

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"os"
)

// Writer stream các dòng CSV qua gzip xuống một file tạm.
// Commit đổi tên file tạm thành file đích; Discard dọn file tạm
// (hoặc giữ lại phần đã ghi nếu keepPartial được bật).
type Writer struct {
	path        string
	tmpPath     string
	file        *os.File
	gz          *gzip.Writer
	csv         *csv.Writer
	rows        int
	keepPartial bool
	closed      bool
}

// NewWriter mở file export và ghi header row
func NewWriter(path string, header []string, keepPartial bool) (*Writer, error) {
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("cannot create export file: %w", err)
	}

	gz := gzip.NewWriter(file)
	cw := csv.NewWriter(gz)

	w := &Writer{
		path:        path,
		tmpPath:     tmpPath,
		file:        file,
		gz:          gz,
		csv:         cw,
		keepPartial: keepPartial,
	}

	if err := cw.Write(header); err != nil {
		w.cleanup()
		return nil, fmt.Errorf("cannot write header row: %w", err)
	}

	return w, nil
}

// WriteRow ghi một dòng dữ liệu theo thứ tự nhận được
func (w *Writer) WriteRow(fields []string) error {
	if err := w.csv.Write(fields); err != nil {
		return fmt.Errorf("cannot write row: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("cannot flush row: %w", err)
	}
	w.rows++
	return nil
}

// Rows trả về số dòng dữ liệu đã ghi (không tính header)
func (w *Writer) Rows() int {
	return w.rows
}

// Path trả về đường dẫn file đích
func (w *Writer) Path() string {
	return w.path
}

// Commit flush cả hai tầng, đóng file và đổi tên thành file đích
func (w *Writer) Commit() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.cleanup()
		return fmt.Errorf("cannot flush csv: %w", err)
	}
	if err := w.gz.Close(); err != nil {
		w.cleanup()
		return fmt.Errorf("cannot close gzip stream: %w", err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("cannot close export file: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("cannot finalize export file: %w", err)
	}
	return nil
}

// Discard đóng writer khi job thất bại. Mặc định xóa file tạm để không
// bao giờ để lại một partial file im lặng; keepPartial thì flush phần đã
// ghi và giữ lại dưới tên file đích.
func (w *Writer) Discard() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.keepPartial {
		w.csv.Flush()
		if err := w.gz.Close(); err != nil {
			w.cleanup()
			return err
		}
		if err := w.file.Close(); err != nil {
			os.Remove(w.tmpPath)
			return err
		}
		return os.Rename(w.tmpPath, w.path)
	}

	w.cleanup()
	return nil
}

func (w *Writer) cleanup() {
	w.gz.Close()
	w.file.Close()
	os.Remove(w.tmpPath)
}
