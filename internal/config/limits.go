package config

const (
	// MaxPromptLength is the maximum length of the project description a
	// session starts from.
	MaxPromptLength = 10000

	// MaxMessageLength is the maximum length of one chat message. Assistant
	// messages carry whole artifacts, so this is much larger than a prompt.
	MaxMessageLength = 200000

	// MaxChatMessages is the maximum number of messages accepted by the
	// stateless chat endpoint.
	MaxChatMessages = 200

	// MaxFilePathLength is the maximum length of a file path written through
	// the editor endpoint.
	MaxFilePathLength = 500

	// MaxDocumentSize is the maximum size in bytes of a document accepted by
	// the parse endpoint and of a file written through the editor endpoint.
	MaxDocumentSize = 1 << 20

	// MaxCommandLength is the maximum length of a sandbox command.
	MaxCommandLength = 1000
)
