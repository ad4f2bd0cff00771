package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// TokenRecorder receives token usage reported by the chat model.
type TokenRecorder interface {
	ObserveTokens(model string, prompt, completion int)
}

// NewAllCallbacks aggregates the model and prompt observers into one callbacks.Handler.
// tokens may be nil.
func NewAllCallbacks(tokens TokenRecorder) einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler(tokens)).
		Prompt(newPromptHandler()).
		Handler()
}
