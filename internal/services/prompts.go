package services

import (
	"encoding/json"
	"fmt"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
)

// architectPrompt builds the prompt for the dependent blueprint generation
// step. The model must return a JSON array with exactly one blueprint object.
func architectPrompt(userPrompt string) string {
	return fmt.Sprintf(`You are a Senior Software Architect with expertise in designing scalable, cloud-native microservices systems.

Your task is to analyze the user's project requirements and design a MICROSERVICES ARCHITECTURE.

CRITICAL INSTRUCTIONS:
1. Return ONLY a valid JSON array containing exactly 1 object
2. The object must have these keys: "name", "description", "pros", "cons"
3. "name": String (max 255 chars) - Should include "Microservices" in the name
4. "description": String - Detailed technical description of the microservices architecture including:
   - Core microservices and their responsibilities
   - Communication patterns (REST APIs, message queues, event-driven)
   - Data management strategy (database per service, shared databases, etc.)
   - Infrastructure considerations (containers, orchestration, service mesh)
5. "pros": Array of objects with "point" and "description" keys - advantages (4-6 items)
6. "cons": Array of objects with "point" and "description" keys - disadvantages/challenges (4-6 items)
7. NO extra text, explanations, or markdown - ONLY the JSON array

Example format:
[
  {
    "name": "Cloud-Native Microservices Architecture",
    "description": "Distributed system with independent services deployed in containers, communicating via REST APIs and event streaming.",
    "pros": [
      {"point": "Independent Scalability", "description": "Each microservice can scale horizontally based on its specific load patterns"}
    ],
    "cons": [
      {"point": "Operational Complexity", "description": "Requires robust DevOps practices and infrastructure automation"}
    ]
  }
]

Design a comprehensive microservices architecture for this project:

Project Requirements:
%s`, userPrompt)
}

const systemsAnalystInstructions = `You are a Senior Systems Analyst with deep expertise in system architecture, performance, scalability, and technical risk assessment.

Your task is to analyze the provided architectural blueprint and identify potential issues, risks, and concerns from a SYSTEMS perspective.

CRITICAL INSTRUCTIONS:
1. Return ONLY a valid JSON array of analysis objects
2. Each object must have these keys: "category", "finding", "severity"
3. "category": String (max 100 chars) - Type of analysis (e.g., "Performance", "Security", "Scalability", "Reliability", "Maintainability")
4. "finding": String - Detailed technical finding or concern
5. "severity": Integer (1-10) - Risk level where 1=low, 10=critical
6. Focus on: Performance bottlenecks, scalability limits, security vulnerabilities, reliability issues, technical debt risks
7. Provide 2-4 analyses
8. NO extra text, explanations, or markdown - ONLY the JSON array

Example format:
[
  {
    "category": "Performance",
    "finding": "Database queries may become bottleneck under high load without proper indexing strategy",
    "severity": 7
  }
]

Analyze this architecture:`

const bizopsAnalystInstructions = `You are a Senior Business Operations (BizOps) Analyst with expertise in operational efficiency, cost analysis, team dynamics, and business risk assessment.

Your task is to analyze the provided architectural blueprint from a BUSINESS OPERATIONS perspective.

CRITICAL INSTRUCTIONS:
1. Return ONLY a valid JSON array of analysis objects
2. Each object must have these keys: "category", "finding", "severity"
3. "category": String (max 100 chars) - Type of analysis (e.g., "Cost", "Operations", "Team Structure", "Deployment", "Monitoring", "Compliance")
4. "finding": String - Detailed operational or business finding
5. "severity": Integer (1-10) - Business impact level where 1=low, 10=critical
6. Focus on: Operational complexity, cost implications, team skill requirements, deployment challenges, monitoring needs, compliance issues
7. Provide 2-4 analyses
8. NO extra text, explanations, or markdown - ONLY the JSON array

Example format:
[
  {
    "category": "Operations",
    "finding": "Requires specialized DevOps team with container orchestration expertise, increasing operational overhead",
    "severity": 6
  }
]

Analyze this architecture:`

// analystInstructions returns the role prompt for an analyst agent.
func analystInstructions(agentType models.AgentType) (string, error) {
	switch agentType {
	case models.AgentTypeSystems:
		return systemsAnalystInstructions, nil
	case models.AgentTypeBizops:
		return bizopsAnalystInstructions, nil
	default:
		return "", fmt.Errorf("unknown agent type: %s", agentType)
	}
}

// Context formats a blueprint draft as the shared context both analyst
// agents receive.
func (d *BlueprintDraft) Context() string {
	pros, _ := json.MarshalIndent(d.Pros, "", "  ")
	cons, _ := json.MarshalIndent(d.Cons, "", "  ")
	return fmt.Sprintf(`
Architecture Name: %s
Description: %s

Pros: %s
Cons: %s
`, d.Name, d.Description, string(pros), string(cons))
}

// diagramPrompt builds the prompt for the post-analysis Mermaid diagram.
func diagramPrompt(name, description string) string {
	return fmt.Sprintf(`You are an expert software architect and diagram designer. Generate a comprehensive Mermaid.js flowchart diagram for the following architecture blueprint.

ARCHITECTURE BLUEPRINT:
Name: %s
Description: %s

REQUIREMENTS:
1. Use "graph TB" (top-to-bottom) layout
2. Include ALL services, databases, message queues, caches, and infrastructure components mentioned in the description
3. Show relationships between components with proper arrows (solid for direct calls, dashed for events/async)
4. Define style classes for clients, gateways, services, databases, and queues
5. Label arrows with meaningful text (e.g., "REST", "WebSocket", "events", "queries")
6. If a service mesh is mentioned, use a subgraph

OUTPUT FORMAT:
Return ONLY the raw Mermaid diagram syntax. Do NOT include markdown code fences, explanations, or any other text.
Start directly with "graph TB" and include all class definitions.

Generate a detailed, production-quality Mermaid diagram now:`, name, description)
}
