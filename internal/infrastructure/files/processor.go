package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultMaxSize = 50 * 1024 * 1024

var (
	ErrNotFound        = errors.New("file not found")
	ErrTooLarge        = errors.New("file exceeds the maximum size")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyContent    = errors.New("file has no readable content")
	ErrOutsideRoot     = errors.New("file is outside the upload and output directories")
)

// SupportedFormats maps a file type to its extensions.
var SupportedFormats = map[string][]string{
	"pdf":   {".pdf"},
	"word":  {".doc", ".docx"},
	"excel": {".xls", ".xlsx"},
	"text":  {".txt", ".md"},
	"code":  {".py", ".js", ".html", ".css", ".java", ".cpp", ".c", ".php", ".rb", ".go", ".rs", ".swift", ".kt", ".scala"},
}

// Info describes a file on disk.
type Info struct {
	FileName  string    `json:"file_name"`
	FileSize  int64     `json:"file_size"`
	FileType  string    `json:"file_type"`
	Extension string    `json:"extension"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
	Exists    bool      `json:"exists"`
}

// Content is the extracted text of a file plus type-specific counters.
type Content struct {
	FilePath   string         `json:"file_path"`
	FileType   string         `json:"file_type"`
	Content    string         `json:"content"`
	Pages      int            `json:"pages,omitempty"`
	Paragraphs int            `json:"paragraphs,omitempty"`
	Tables     int            `json:"tables,omitempty"`
	Sheets     []Sheet        `json:"sheets,omitempty"`
	Lines      int            `json:"lines,omitempty"`
	Words      int            `json:"words,omitempty"`
	Characters int            `json:"characters,omitempty"`
	Language   string         `json:"language,omitempty"`
	Functions  int            `json:"functions,omitempty"`
	Classes    int            `json:"classes,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Sheet summarizes one spreadsheet tab.
type Sheet struct {
	Name    string     `json:"name"`
	Rows    int        `json:"rows"`
	Columns int        `json:"columns"`
	Preview [][]string `json:"preview,omitempty"`
}

// Config holds file locations and limits.
type Config struct {
	UploadDir string
	OutputDir string
	MaxSize   int64
}

// Processor reads, validates and writes user files.
type Processor struct {
	cfg    Config
	logger zerolog.Logger
}

func NewProcessor(cfg Config, logger zerolog.Logger) (*Processor, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &Processor{
		cfg:    cfg,
		logger: logger.With().Str("service", "files").Logger(),
	}, nil
}

// FileType maps a path to its type by extension, or "unknown".
func FileType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for typ, exts := range SupportedFormats {
		for _, e := range exts {
			if e == ext {
				return typ
			}
		}
	}
	return "unknown"
}

// Validate checks location, existence, size and type.
func (p *Processor) Validate(path string, size int64) error {
	if err := p.checkRoot(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	if size > p.cfg.MaxSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, size, p.cfg.MaxSize)
	}
	if FileType(path) == "unknown" {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}
	return nil
}

// Info stats path. A missing file yields Exists=false and no error.
func (p *Processor) Info(path string) (*Info, error) {
	if err := p.checkRoot(path); err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Info{FileName: filepath.Base(path), Exists: false}, nil
		}
		return nil, err
	}
	return &Info{
		FileName:  filepath.Base(path),
		FileSize:  st.Size(),
		FileType:  FileType(path),
		Extension: strings.ToLower(filepath.Ext(path)),
		Created:   st.ModTime().UTC(),
		Modified:  st.ModTime().UTC(),
		Exists:    true,
	}, nil
}

// Process validates path and extracts its content according to its type.
func (p *Processor) Process(path string, size int64) (*Content, error) {
	if err := p.Validate(path, size); err != nil {
		return nil, err
	}
	var (
		c   *Content
		err error
	)
	switch typ := FileType(path); typ {
	case "pdf":
		c, err = readPDF(path)
	case "word":
		c, err = readWord(path)
	case "excel":
		c, err = readExcel(path)
	case "text":
		c, err = readText(path)
	case "code":
		c, err = readCode(path)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
	}
	if err != nil {
		p.logger.Error().Err(err).Str("path", path).Msg("process file failed")
		return nil, err
	}
	c.FilePath = path
	return c, nil
}

// checkRoot rejects paths that do not resolve inside the upload or output
// directory. Symlinks are followed before comparing.
func (p *Processor) checkRoot(path string) error {
	target, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	for _, dir := range []string{p.cfg.UploadDir, p.cfg.OutputDir} {
		if dir == "" {
			continue
		}
		root, err := resolvePath(dir)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, target)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return nil
	}
	p.logger.Warn().Str("path", path).Msg("file outside allowed directories")
	return fmt.Errorf("%w: %s", ErrOutsideRoot, path)
}

// resolvePath makes path absolute and follows symlinks. A missing final
// element is resolved through its parent directory.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, filepath.Base(abs)), nil
}

// Save writes content into the output directory. Names without an
// extension get ".txt".
func (p *Processor) Save(content, name, fileType string) (string, error) {
	name = filepath.Base(name)
	if filepath.Ext(name) == "" {
		name += ".txt"
	}
	path := filepath.Join(p.cfg.OutputDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("save %s file: %w", fileType, err)
	}
	p.logger.Info().Str("path", path).Str("file_type", fileType).Int("bytes", len(content)).Msg("file saved")
	return path, nil
}

// SaveUpload stores an uploaded stream under the upload directory,
// rejecting streams larger than the configured maximum.
func (p *Processor) SaveUpload(name string, r io.Reader) (string, int64, error) {
	path := filepath.Join(p.cfg.UploadDir, uuid.NewString()+"_"+filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(f, io.LimitReader(r, p.cfg.MaxSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > p.cfg.MaxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return path, n, nil
}
