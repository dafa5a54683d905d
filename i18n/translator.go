package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "model" or "id").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "unknown_key":
			return "未知のキーです"
		case "parse_error":
			return "解析エラー"
		case "invalid_format":
			return "形式が不正です"
		case "invariant_violation":
			return "前提条件に違反しています"
		case "duplicate_identifier":
			return withRef("識別子が重複しています", data)
		case "unresolved_reference":
			return withRef("参照を解決できません", data)
		case "deserialize_error":
			return "デシリアライズに失敗しました"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "unknown_key":
			return "unknown key"
		case "parse_error":
			return "parse error"
		case "invalid_format":
			return "invalid format"
		case "invariant_violation":
			return "invariant violation"
		case "duplicate_identifier":
			return withRef("duplicate identifier", data)
		case "unresolved_reference":
			return withRef("unresolvable reference", data)
		case "deserialize_error":
			return "deserialize failed"
		}
	}
	return code
}

// withRef appends "model#id" when both are known.
func withRef(msg string, data map[string]string) string {
	if data == nil || data["model"] == "" {
		return msg
	}
	return msg + ": " + data["model"] + "#" + data["id"]
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
