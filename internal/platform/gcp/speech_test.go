package gcp

import (
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

func TestBuildRecognitionConfigDefaults(t *testing.T) {
	rc := buildRecognitionConfig(SpeechConfig{})
	if rc.GetEncoding() != speechpb.RecognitionConfig_LINEAR16 {
		t.Fatalf("encoding: got=%v want=LINEAR16", rc.GetEncoding())
	}
	if rc.GetSampleRateHertz() != 16000 || rc.GetAudioChannelCount() != 1 {
		t.Fatalf("unexpected audio format: %v", rc)
	}
	if rc.GetLanguageCode() != "en-US" || !rc.GetEnableAutomaticPunctuation() {
		t.Fatalf("unexpected language/punctuation: %v", rc)
	}
}

func TestJoinTranscript(t *testing.T) {
	resp := &speechpb.LongRunningRecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "Hello class."}}},
			{Alternatives: nil},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: " Today we cover limits. "}}},
		},
	}
	if got, want := joinTranscript(resp), "Hello class. Today we cover limits."; got != want {
		t.Fatalf("joinTranscript: got=%q want=%q", got, want)
	}
}

func TestPublicURL(t *testing.T) {
	if got, want := publicURL("b", "", "/frames/x.png"), "https://storage.googleapis.com/b/frames/x.png"; got != want {
		t.Fatalf("publicURL: got=%q want=%q", got, want)
	}
	if got, want := publicURL("b", "cdn.example.com", "frames/x.png"), "https://cdn.example.com/frames/x.png"; got != want {
		t.Fatalf("publicURL cdn: got=%q want=%q", got, want)
	}
}

func TestLanguageCode(t *testing.T) {
	if got := languageCode("en"); got != "en-US" {
		t.Fatalf("languageCode: got=%q want=en-US", got)
	}
	if got := languageCode("en-GB"); got != "en-GB" {
		t.Fatalf("languageCode: got=%q want=en-GB", got)
	}
}
