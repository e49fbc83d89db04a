package logs

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTailBytes ogranicza podgląd logu ostatniego importu.
const DefaultTailBytes = 40000

func New(logFilePath string, withConsole bool) zerolog.Logger {
	// Utwórz plik logów (append + tworzenie jeśli brak)
	logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal().Err(err).Msg("Nie można otworzyć pliku log")
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer = logFile

	if withConsole {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		writer = zerolog.MultiLevelWriter(logFile, consoleWriter)
	}

	logger := zerolog.New(writer).With().
		Timestamp().
		Caller().
		Logger()

	// Ustaw globalny logger
	log.Logger = logger

	return logger
}

// ResetFile czyści plik logu przed nowym przebiegiem importu.
// Plik otwarty w trybie O_APPEND pisze dalej od nowego końca.
func ResetFile(logFilePath string) error {
	err := os.Truncate(logFilePath, 0)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Tail zwraca maksymalnie max ostatnich bajtów logu.
// Po przycięciu odrzuca niepełną pierwszą linię.
func Tail(logFilePath string, max int64) ([]byte, error) {
	f, err := os.Open(logFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if max <= 0 || fi.Size() <= max {
		return io.ReadAll(f)
	}

	if _, err := f.Seek(fi.Size()-max, io.SeekStart); err != nil {
		return nil, err
	}
	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		buf = buf[i+1:]
	}
	return buf, nil
}
