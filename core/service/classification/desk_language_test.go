package classification

import (
	"testing"

	"desk_server/core/domain"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Language
	}{
		{
			name: "Russian with script-specific letters",
			text: "Вы что-то щёлкнули и теперь ничего не работает",
			want: domain.LangRussian,
		},
		{
			name: "Uzbek Cyrillic with specific letters",
			text: "Тўлов ўтмаяпти, ёрдам беринг",
			want: domain.LangUzCyrillic,
		},
		{
			name: "ambiguous shared-alphabet Cyrillic",
			text: "не работает касса",
			want: domain.LangMixed,
		},
		{
			name: "Uzbek Latin via function words",
			text: "Kassa ishlamayapti, yordam kerak",
			want: domain.LangUzLatin,
		},
		{
			name: "plain English",
			text: "The app crashes when I open the report",
			want: domain.LangEnglish,
		},
		{
			name: "Uzbek specific letter wins over Russian text",
			text: "Раҳмат катта",
			want: domain.LangUzCyrillic,
		},
		{
			name: "digits and punctuation only",
			text: "12345 !!!",
			want: domain.LangMixed,
		},
		{
			name: "empty text",
			text: "",
			want: domain.LangMixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectLanguage(tt.text)
			if got != tt.want {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
