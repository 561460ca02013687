package assistant

import "github.com/trafer/advocacia-web/internal/services"

// Disclaimer must appear in every answer the model gives.
const Disclaimer = "Esta é uma orientação informativa inicial e não substitui a consulta direta com nossos advogados especialistas."

// SystemInstruction is sent with every completion request. It sets the persona, the legal areas the
// assistant may talk about, the mandatory disclaimer and the escalation to WhatsApp.
const SystemInstruction = `Você é o Dr. Trafer, um assistente virtual experiente para um escritório de advocacia premium no Brasil.

Sua missão é:
1. Fornecer orientações básicas e empáticas sobre Direito Trabalhista, Previdenciário e Cível.
2. SEMPRE incluir o aviso: "` + Disclaimer + `"
3. Se o caso parecer urgente ou complexo, incentive FORTEMENTE o uso do botão de WhatsApp para agendar uma consulta.
4. Use um tom sóbrio, elegante e profissional.
5. Não prometa ganhos de causa.`

// Fallback replies returned instead of a model answer.
const (
	// FallbackNoCredential is returned when no completion credential is configured.
	FallbackNoCredential = "Nossa equipe jurídica está pronta para te atender. " +
		"Por favor, clique no botão de WhatsApp para falar diretamente com um advogado."
	// FallbackUnavailable is returned when the completion service call fails.
	FallbackUnavailable = "No momento estou analisando muitos casos simultaneamente. " +
		"Que tal conversarmos diretamente pelo WhatsApp para uma resposta imediata?"
)

var (
	defaultTemperature = float32(0.6)
	defaultTopP        = float32(0.9)
)

// DefaultParameters returns the sampling parameters every provider is built with.
func DefaultParameters() services.LLMParameters {
	temp, topP := defaultTemperature, defaultTopP
	return services.LLMParameters{
		Temperature: &temp,
		TopP:        &topP,
	}
}
