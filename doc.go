// Package agora provides a semantically routed author debate panel.
//
// Agora answers a user query by selecting the most relevant author
// personas from a configured panel, grounding each author's response
// in excerpts retrieved from their own works, and optionally running
// multi-round debates where authors rebut one another.
//
// # Quick Start
//
// Create a panel configuration:
//
//	yaml
//	llm:
//	  type: "openai"
//	  model: "gpt-4-turbo"
//	  api_key: "${OPENAI_API_KEY}"
//
//	embedder:
//	  type: "openai"
//	  api_key: "${OPENAI_API_KEY}"
//
//	authors:
//	  - id: "marx"
//	    name: "Karl Marx"
//	    expertise_domains: ["economics", "class struggle"]
//	    system_prompt: "You are Karl Marx..."
//
// # Using as Go Library
//
// Import the main package for convenience:
//
//	import "github.com/kadirpekel/agora"
//
// Or import specific packages:
//
//	import (
//	    "github.com/kadirpekel/agora/pkg/agora"
//	    "github.com/kadirpekel/agora/pkg/routing"
//	    "github.com/kadirpekel/agora/pkg/config"
//	)
//
// # Key Features
//
//   - **Semantic routing**: authors selected by embedding similarity
//     against their expertise profiles
//   - **Grounded responses**: retrieval-augmented generation over each
//     author's indexed corpus
//   - **Multi-round debates**: authors critique and build on each
//     other's positions
//   - **Agentic debates**: tool-using agents that search works, analyze
//     arguments, and share a debate knowledge base
//   - **Pluggable providers**: OpenAI, Anthropic, and Gemini LLMs;
//     chromem, Qdrant, and Pinecone vector stores
//   - **Response caching**: exact and semantic reuse of prior panels
//
// # Architecture
//
// A query flows through the panel in stages:
//
//	Query → Router (author selection) → Responder (RAG fan-out) →
//	Aggregator / Debate Orchestrator → Panel Response
//
// # Alpha Status
//
// Agora is currently in alpha development. APIs may change, and some
// features are experimental.
package agora
