package logging

import (
	"sync"
)

// LoggerManager хранит логгеры компонентов
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{
			loggers: make(map[string]*Logger),
		}
	})
	return globalManager
}

// GetLogger возвращает логгер для компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) *Logger {
	lm.mu.RLock()
	if logger, exists := lm.loggers[component]; exists {
		lm.mu.RUnlock()
		return logger
	}
	lm.mu.RUnlock()

	lm.mu.Lock()
	defer lm.mu.Unlock()

	// Проверяем еще раз на случай race condition
	if logger, exists := lm.loggers[component]; exists {
		return logger
	}

	logger := newLogger(component)
	lm.loggers[component] = logger
	return logger
}

// Удобные функции для получения логгеров
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().GetLogger(component)
}

func GetEngineLogger() *Logger {
	return GetComponentLogger("engine")
}

func GetSessionLogger() *Logger {
	return GetComponentLogger("session")
}

func GetSnapshotLogger() *Logger {
	return GetComponentLogger("snapshot")
}
