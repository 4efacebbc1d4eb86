package observability

const (
	AttrRunID         = "agent.run_id"
	AttrIteration     = "agent.iteration"
	AttrOutcome       = "agent.outcome"
	AttrToolName      = "tool.name"
	AttrToolInput     = "tool.input"
	AttrLLMModel      = "llm.model"
	AttrLLMTokensIn   = "llm.tokens.input"
	AttrLLMTokensOut  = "llm.tokens.output"
	AttrErrorType     = "error.type"
	AttrHTTPMethod    = "http.method"
	AttrHTTPPath      = "http.path"
	AttrHTTPStatus    = "http.status_code"
	AttrHTTPRespBytes = "http.response_size"

	SpanAgentRun      = "agent.run"
	SpanLLMRequest    = "agent.llm_request"
	SpanToolExecution = "agent.tool_execution"
	SpanHTTPRequest   = "http.request"

	DefaultServiceName  = "dealfinder"
	DefaultNamespace    = "dealfinder"
	DefaultOTLPEndpoint = "localhost:4317"
	DefaultMetricsPath  = "/metrics"
	DefaultSamplingRate = 1.0

	instrumentationName = "github.com/kadirpekel/dealfinder"
)
