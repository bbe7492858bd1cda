package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/entity"
)

// MockConnector answers without a backend. It echoes enough of the request to
// make grounded and ungrounded flows distinguishable in tests and local runs.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Name() entity.Provider { return entity.ProviderMock }

func (m *MockConnector) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] chat completion", zap.Int("prompt_length", len(req.Prompt)))

	if strings.Contains(req.Prompt, "[Source 1]") {
		return fmt.Sprintf("[MOCK] grounded answer based on provided context (%d chars)", len(req.Prompt)), nil
	}
	return fmt.Sprintf("[MOCK] answer to: %s", req.Prompt), nil
}
