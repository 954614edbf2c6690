package parser

import (
	"context"
	"fmt"
	"sync"

	"medvault/internal/logging"
	"medvault/internal/parser/insurance"
	"medvault/internal/port"
)

// MergeParser wraps two CardParsers, runs both in parallel, and merges results.
type MergeParser struct {
	primary   port.CardParser
	secondary port.CardParser
}

// NewMergeParser creates a MergeParser from primary and secondary parsers.
func NewMergeParser(primary, secondary port.CardParser) *MergeParser {
	return &MergeParser{primary: primary, secondary: secondary}
}

func (m *MergeParser) Parse(ctx context.Context, input port.CardParseInput) (*port.CardParseOutput, error) {
	type result struct {
		output *port.CardParseOutput
		err    error
	}

	var wg sync.WaitGroup
	var pResult, sResult result

	wg.Add(2)
	go func() {
		defer wg.Done()
		out, err := m.primary.Parse(ctx, input)
		pResult = result{out, err}
	}()
	go func() {
		defer wg.Done()
		out, err := m.secondary.Parse(ctx, input)
		sResult = result{out, err}
	}()
	wg.Wait()

	// Both failed
	if pResult.err != nil && sResult.err != nil {
		return nil, fmt.Errorf("both parsers failed: primary: %v; secondary: %w", pResult.err, sResult.err)
	}

	// Only secondary succeeded
	if pResult.err != nil {
		logging.API.Warnf("parser.MergeParser: primary parser failed (%v), using secondary only", pResult.err)
		sResult.output.FieldProvenance = map[string]string{"_source": "secondary_only"}
		sResult.output.SecondaryModel = sResult.output.ModelUsed
		return sResult.output, nil
	}

	// Only primary succeeded
	if sResult.err != nil {
		logging.API.Warnf("parser.MergeParser: secondary parser failed (%v), using primary only", sResult.err)
		pResult.output.FieldProvenance = map[string]string{"_source": "primary_only"}
		return pResult.output, nil
	}

	return mergeOutputs(pResult.output, sResult.output), nil
}

func mergeOutputs(primary, secondary *port.CardParseOutput) *port.CardParseOutput {
	p, s := primary.Card, secondary.Card
	provenance := make(map[string]string)
	merged := p

	if s.Provider.Confidence.Outranks(p.Provider.Confidence) {
		merged.Provider = s.Provider
		provenance["provider"] = "secondary"
	} else {
		mergeString(&merged.Provider.Name, s.Provider.Name, "provider", provenance)
	}

	mergeString(&merged.MemberID, s.MemberID, "member_id", provenance)
	mergeString(&merged.GroupNumber, s.GroupNumber, "group_number", provenance)
	mergeString(&merged.PlanName, s.PlanName, "plan_name", provenance)
	mergeString(&merged.SubscriberName, s.SubscriberName, "subscriber_name", provenance)
	mergeString(&merged.RxBIN, s.RxBIN, "rx_bin", provenance)
	mergeString(&merged.RxPCN, s.RxPCN, "rx_pcn", provenance)
	mergeString(&merged.RxGroup, s.RxGroup, "rx_group", provenance)

	merged.PhoneNumbers = insurance.NormalizePhones(append(append([]string{}, p.PhoneNumbers...), s.PhoneNumbers...))
	switch {
	case len(merged.PhoneNumbers) > len(insurance.NormalizePhones(p.PhoneNumbers)):
		provenance["phone_numbers"] = "union"
	default:
		provenance["phone_numbers"] = "primary"
	}

	ocrText := primary.OCRText
	if ocrText == "" {
		ocrText = secondary.OCRText
	}

	return &port.CardParseOutput{
		Card:            merged,
		OCRText:         ocrText,
		ModelUsed:       primary.ModelUsed,
		FieldProvenance: provenance,
		SecondaryModel:  secondary.ModelUsed,
	}
}

// mergeString keeps a non-empty primary value and fills gaps from the secondary.
func mergeString(pVal *string, sVal, field string, provenance map[string]string) {
	switch {
	case *pVal == sVal:
		provenance[field] = "agree"
	case *pVal == "" && sVal != "":
		*pVal = sVal
		provenance[field] = "secondary"
	case sVal == "":
		provenance[field] = "primary"
	default:
		provenance[field] = "disagreement"
	}
}
