package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bodega/internal/tank"
)

// Operator-facing failure strings. These are fixed on purpose: the raw
// error never reaches the operator, only the logs.
const (
	// MsgAPIKeyMissing is returned when no Gemini credential is configured.
	MsgAPIKeyMissing = "Error: La clave API de Gemini no está configurada. Por favor, asegúrate de que la variable de entorno API_KEY esté definida."
	// MsgUnavailable is returned when the model call fails for any reason.
	MsgUnavailable = "Lo siento, ha ocurrido un error al procesar tu solicitud. Puede que la clave de API no sea válida. Por favor, inténtalo de nuevo más tarde."
)

// systemInstruction constrains the model to the supplied tank data: answer
// directly when the question is specific, ask a clarifying question when
// it is ambiguous, never fabricate, always reply in Spanish.
const systemInstruction = `
Actúas como un Asistente de Gestión de Bodega Cervecera. Tu conocimiento se limita estrictamente a los datos JSON de los tanques de cerveza que se proporcionan a continuación.
Tu tarea es responder a las preguntas del usuario sobre los tanques.
- Si la pregunta del usuario es específica y se puede responder directamente con los datos (ej. "¿Cuál es el estado del tanque T-003?"), proporciona una respuesta clara y concisa.
- Si la pregunta del usuario es ambigua o demasiado general (ej. "háblame de las IPAs", "¿tenemos poca cerveza?"), DEBES hacer una pregunta aclaratoria para entender qué información específica necesita el usuario. Por ejemplo, si preguntan por las IPAs, podrías preguntar: "¿Buscas el volumen total de IPAs, el número de tanques que contienen IPA o el estado de cada tanque de IPA?".
- No inventes información. Si no puedes responder con los datos proporcionados, indícalo.
- Responde siempre en español.
- Formatea tu respuesta de manera clara, usando negritas para resaltar y listas si es necesario.
`

// Completer is the model call the bridge depends on. *GeminiClient
// satisfies it; tests substitute a fake.
type Completer interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Answer is the bridge's two-outcome result: either the model's text, or
// one of the fixed failure strings with Unavailable set. Callers can log
// or count unavailability without ever surfacing a raw error.
type Answer struct {
	Text        string `json:"answer"`
	Unavailable bool   `json:"unavailable"`
}

// Bridge grounds operator questions in the current tank list and forwards
// them to the model. It retains nothing between calls.
type Bridge struct {
	client Completer
	hasKey bool
	log    *zap.Logger
}

// NewBridge builds a bridge backed by the Gemini client.
func NewBridge(config GeminiConfig, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		client: NewGeminiClient(config, log),
		hasKey: config.APIKey != "",
		log:    log,
	}
}

// NewBridgeWithCompleter builds a bridge around an existing completer.
func NewBridgeWithCompleter(client Completer, hasKey bool, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{client: client, hasKey: hasKey, log: log}
}

// Ask answers a free-text question about the supplied tanks. A missing
// credential short-circuits without a network call; any call failure is
// logged and collapsed into the fixed apology string.
func (b *Bridge) Ask(ctx context.Context, tanks []tank.Tank, question string) Answer {
	if !b.hasKey {
		return Answer{Text: MsgAPIKeyMissing, Unavailable: true}
	}

	prompt, err := buildPrompt(tanks, question)
	if err != nil {
		b.log.Error("assistant prompt build failed", zap.Error(err))
		return Answer{Text: MsgUnavailable, Unavailable: true}
	}

	reply, err := b.client.CompleteWithSystem(ctx, systemInstruction, prompt)
	if err != nil {
		if errors.Is(err, ErrAPIKeyMissing) {
			return Answer{Text: MsgAPIKeyMissing, Unavailable: true}
		}
		b.log.Error("assistant call failed", zap.Error(err))
		return Answer{Text: MsgUnavailable, Unavailable: true}
	}
	return Answer{Text: reply}
}

func buildPrompt(tanks []tank.Tank, question string) (string, error) {
	data, err := json.MarshalIndent(tanks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize tanks: %w", err)
	}
	return fmt.Sprintf("DATOS DE LOS TANQUES:\n%s\n\nPREGUNTA DEL USUARIO:\n%q", data, question), nil
}
