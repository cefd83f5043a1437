package moodboard

import (
	"encoding/json"
	"regexp"
	"strings"
)

const MaxPieces = 3

// Result is either *DesignResult or *NeedMoreInfoResult.
type Result interface {
	isResult()
}

type DNA struct {
	Lines    string
	Textures string
	Mood     string
}

type DesignResult struct {
	DNA    DNA
	Pieces []string
}

type NeedMoreInfoResult struct {
	WhatISee  string
	Questions []string
}

func (*DesignResult) isResult()       {}
func (*NeedMoreInfoResult) isResult() {}

const defaultWhatISee = "Necesito un poco más de contexto."

// ParseFallback is returned when the model ignores the JSON contract.
func ParseFallback() *NeedMoreInfoResult {
	return &NeedMoreInfoResult{
		WhatISee: "Vi las imágenes pero no pude estructurar una respuesta. ¿Puedes contarme en 1–2 frases el contexto de esta colección (público, tipo de pieza principal)?",
		Questions: []string{
			"¿Para qué tipo de piezas es este moodboard (pendientes, collares, anillos)?",
			"¿Las perlas son protagonistas o solo un detalle?",
			"¿Público más joven/minimal o más clásico?",
		},
	}
}

var (
	openFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	closeFence = regexp.MustCompile("\\s*```$")
)

func stripFence(raw string) string {
	cleaned := openFence.ReplaceAllString(strings.TrimSpace(raw), "")
	return strings.TrimSpace(closeFence.ReplaceAllString(cleaned, ""))
}

// ClassifyResponse turns raw model output into a Result. parsed is false
// when the output was not a JSON object and the fallback was used.
func ClassifyResponse(raw string) (result Result, parsed bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripFence(raw)), &fields); err != nil || fields == nil {
		return ParseFallback(), false
	}

	var needMore bool
	if json.Unmarshal(fields["needMoreInfo"], &needMore) == nil && needMore {
		info := &NeedMoreInfoResult{
			WhatISee:  stringField(fields["whatISee"]),
			Questions: stringList(fields["questions"]),
		}
		if info.WhatISee == "" {
			info.WhatISee = defaultWhatISee
		}
		return info, true
	}

	var adn map[string]json.RawMessage
	_ = json.Unmarshal(fields["adn"], &adn)

	pieces := stringList(fields["piezas"])
	if len(pieces) > MaxPieces {
		pieces = pieces[:MaxPieces]
	}

	return &DesignResult{
		DNA: DNA{
			Lines:    stringField(adn["lineas"]),
			Textures: stringField(adn["texturas"]),
			Mood:     stringField(adn["energia"]),
		},
		Pieces: pieces,
	}, true
}

func stringField(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// stringList keeps the string entries of a JSON array; anything else
// yields an empty list.
func stringList(raw json.RawMessage) []string {
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := stringField(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
