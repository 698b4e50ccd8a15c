package models

// ResponseKind discriminates the variants of ResponseState.
type ResponseKind string

const (
	ResponseIdle       ResponseKind = "idle"
	ResponseLoading    ResponseKind = "loading"
	ResponseStreaming  ResponseKind = "streaming"
	ResponseSuccess    ResponseKind = "success"
	ResponseError      ResponseKind = "error"
)

// ResponseState is a single value in the observable stream a streaming LLM
// client exposes. Only the fields relevant to Kind are populated:
//   - Streaming: Delta and Accumulated
//   - Success: Accumulated holds the full response
//   - Error: Message holds a human-readable cause
type ResponseState struct {
	Kind        ResponseKind
	Delta       string
	Accumulated string
	Message     string
}

// Idle, Loading, Streaming, Success and Error construct the corresponding
// ResponseState variant. They exist so call sites read like the tagged
// union the design describes instead of struct literals with mostly-zero
// fields.
func Idle() ResponseState { return ResponseState{Kind: ResponseIdle} }

func Loading() ResponseState { return ResponseState{Kind: ResponseLoading} }

func Streaming(delta, accumulated string) ResponseState {
	return ResponseState{Kind: ResponseStreaming, Delta: delta, Accumulated: accumulated}
}

func Success(full string) ResponseState {
	return ResponseState{Kind: ResponseSuccess, Accumulated: full}
}

func Error(message string) ResponseState {
	return ResponseState{Kind: ResponseError, Message: message}
}
