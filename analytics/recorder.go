package analytics

import (
	"os"

	"github.com/approvd/approvd/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DecisionLog appends one JSON line per workflow transition to a file, kept
// separate from the process log so downstream reporting can tail it.
type DecisionLog struct {
	fileName string
	logger   *zap.Logger
}

func NewDecisionLog(fileName string) (*DecisionLog, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.StacktraceKey = ""
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	writer := zapcore.AddSync(logFile)
	core := zapcore.NewTee(zapcore.NewCore(fileEncoder, writer, zapcore.InfoLevel))
	return &DecisionLog{
		fileName: fileName,
		logger:   zap.New(core),
	}, nil
}

func (dl *DecisionLog) RecordAction(requestId string, stepId string, actor string, role string, action string) {
	dl.logger.Info("action", zap.String("requestId", requestId), zap.String("stepId", stepId), zap.String("actor", actor), zap.String("role", role), zap.String("action", action))
}

func (dl *DecisionLog) RecordEscalation(requestId string, stepId string, role string) {
	dl.logger.Info("escalation", zap.String("requestId", requestId), zap.String("stepId", stepId), zap.String("role", role))
}

func (dl *DecisionLog) RecordTerminal(requestId string, status model.RequestStatus) {
	dl.logger.Info("terminal", zap.String("requestId", requestId), zap.String("status", string(status)))
}
