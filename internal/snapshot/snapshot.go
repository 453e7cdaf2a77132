// Package snapshot читает и пишет плоский бинарный снимок сетки.
//
// Формат: байты 0..2 содержат X, Y, Z (каждый от 1 до 255), затем ровно X*Y*Z
// байт, по одному на клетку, в порядке линеаризации сетки. Короткая полезная
// нагрузка при чтении дополняется нулями, длинная обрезается.
package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/automata/internal/grid"
	"github.com/annel0/automata/internal/logging"
)

const (
	// HeaderSize размер заголовка с размерами сетки
	HeaderSize = 3
	// MaxAxis максимальная длина оси, представимая в заголовке
	MaxAxis = 255
	// Ext расширение файла несжатого снимка
	Ext = ".bin"
	// CompressedExt расширение файла со сжатым zstd снимком
	CompressedExt = ".zst"
)

// ErrExtentTooLarge ось сетки не помещается в байт заголовка
var ErrExtentTooLarge = errors.New("snapshot: extent axis exceeds 255")

// Write записывает снимок текущего поколения g в w
func Write(w io.Writer, g *grid.Grid) error {
	e := g.Extent()
	if e.X > MaxAxis || e.Y > MaxAxis || e.Z > MaxAxis {
		return fmt.Errorf("%w: %v", ErrExtentTooLarge, e)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write([]byte{byte(e.X), byte(e.Y), byte(e.Z)}); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	for s := range g.States() {
		if err := bw.WriteByte(byte(s)); err != nil {
			return fmt.Errorf("snapshot: write cells: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("snapshot: flush: %w", err)
	}
	return nil
}

// Read читает снимок из r в новую сетку с хранилищем kind.
// Ошибки ввода-вывода возвращаются вызывающему; неверная длина данных ошибкой не считается.
func Read(r io.Reader, kind grid.StorageKind) (*grid.Grid, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}

	e := grid.Extent{X: int(header[0]), Y: int(header[1]), Z: int(header[2])}
	g, err := grid.New(e, kind)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	log := logging.GetSnapshotLogger()
	cells := make([]byte, e.CellCount())
	n, err := io.ReadFull(r, cells)
	switch {
	case err == nil:
		var extra [1]byte
		if m, _ := r.Read(extra[:]); m > 0 {
			log.Debug("Снимок %v длиннее ожидаемого, лишние байты отброшены", e)
		}
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		log.Warn("Снимок %v короче ожидаемого: %d из %d байт, остаток заполнен нулями", e, n, len(cells))
	default:
		return nil, fmt.Errorf("snapshot: read cells: %w", err)
	}

	for i, b := range cells {
		if b != 0 {
			g.SetIndex(i, grid.State(b))
		}
	}
	return g, nil
}

// SaveFile записывает снимок в файл; путь с расширением .zst сжимается zstd
func SaveFile(path string, g *grid.Grid) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("snapshot: close %s: %w", path, cerr)
		}
	}()

	var w io.Writer = f
	var enc *zstd.Encoder
	if isCompressed(path) {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("snapshot: zstd writer: %w", err)
		}
		w = enc
	}

	if err := Write(w, g); err != nil {
		if enc != nil {
			enc.Close()
		}
		return err
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("snapshot: zstd close: %w", err)
		}
	}

	logging.GetSnapshotLogger().Debug("Снимок поколения %d сохранён в %s", g.Generation(), path)
	return nil
}

// LoadFile читает снимок из файла; путь с расширением .zst распаковывается zstd
func LoadFile(path string, kind grid.StorageKind) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if isCompressed(path) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	return Read(r, kind)
}

func isCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), CompressedExt)
}
