package taskscript

import (
	"strings"
	"testing"

	"github.com/ettle/strcase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registerLeadScript = `🎯 Цель: зарегистрировать лид
Клиент написал в чат, нужно перезвонить.
━━━━━━━━━━
📋 Что узнать:
- Имя*: Иван
- Телефон (обязательно): ___
- Бюджет: 2 000 000
- Марка: ...
- Цвет кузова: —
━━━━━━━━━━
💬 Скрипт:
Здравствуйте, **Иван**!
✅ Поблагодарить за обращение
⏰ Срок: сегодня до 18:00`

func TestFormat_SectionsAndSeparators(t *testing.T) {
	out := Format(registerLeadScript)

	assert.Contains(t, out, `<div class="task-section task-section--goal"><strong>🎯 Цель: зарегистрировать лид</strong><br>Клиент написал в чат, нужно перезвонить.</div><hr>`)
	assert.Contains(t, out, `<div class="task-section task-section--checklist"><strong>📋 Что узнать:</strong><br><ul><li>Имя*: Иван</li>`)
	assert.Contains(t, out, `<strong>Иван</strong>`)
	assert.Contains(t, out, `<br><strong>✅</strong> Поблагодарить за обращение</div>`)
	assert.Contains(t, out, `<div class="task-section task-section--deadline"><strong>⏰ Срок: сегодня до 18:00</strong></div>`)
	assert.Equal(t, 2, countOf(out, "<hr>"))
}

func TestFormat_EscapesHTML(t *testing.T) {
	out := Format(`Клиент пишет <script>alert("x")</script> & ждёт`)
	assert.Equal(t, `Клиент пишет &lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; &amp; ждёт`, out)
}

func TestFormat_PlainTextJoinedWithBreaks(t *testing.T) {
	assert.Equal(t, "a<br>b<br>c", Format("a\nb\r\nc"))
	assert.Equal(t, "", Format("   \n "))
}

func TestFormat_BlockClosesAtEndOfInput(t *testing.T) {
	out := Format("💬 Скрипт\nДобрый день")
	assert.Equal(t, `<div class="task-section task-section--script"><strong>💬 Скрипт</strong><br>Добрый день</div>`, out)
}

func TestIsSeparator(t *testing.T) {
	assert.True(t, IsSeparator("━━━"))
	assert.True(t, IsSeparator("  -----  "))
	assert.True(t, IsSeparator("====="))
	assert.False(t, IsSeparator("--"))
	assert.False(t, IsSeparator("-=-"))
	assert.False(t, IsSeparator("- пункт"))
}

func TestExtractFields(t *testing.T) {
	form := ExtractFields(registerLeadScript)

	require.Len(t, form.Fields, 5)
	assert.Equal(t, Field{Key: "name", Label: "Имя", Value: "Иван", Required: true, Filled: true}, form.Fields[0])
	assert.Equal(t, Field{Key: "phone", Label: "Телефон", Value: "", Required: true, Filled: false}, form.Fields[1])
	assert.Equal(t, "budget", form.Fields[2].Key)
	assert.Equal(t, "2 000 000", form.Fields[2].Value)
	assert.Equal(t, "preferredBrands", form.Fields[3].Key)
	assert.False(t, form.Fields[3].Filled)
	assert.Equal(t, "color", form.Fields[4].Key)
	assert.False(t, form.Fields[4].Filled)

	assert.Equal(t, []string{"phone"}, form.Missing())
	assert.False(t, form.CanComplete())

	require.True(t, form.Set("phone", "+7 900 000-00-00"))
	assert.True(t, form.CanComplete())
	assert.Equal(t, "+7 900 000-00-00", form.Values()["phone"])
}

func TestExtractFields_StopsAtHeader(t *testing.T) {
	desc := "Что узнать\nГород: Москва\n💬 Скрипт\nРегион: не поле"
	form := ExtractFields(desc)

	require.Len(t, form.Fields, 1)
	assert.Equal(t, "city", form.Fields[0].Key)
	assert.Equal(t, "Москва", form.Fields[0].Value)
}

func TestExtractFields_NoSection(t *testing.T) {
	form := ExtractFields("Имя: Иван\nТелефон: 123")
	assert.Empty(t, form.Fields)
	assert.True(t, form.CanComplete())
}

func TestExtractFields_UnknownLabelCamelCased(t *testing.T) {
	form := ExtractFields("What to find out:\nPreferred delivery day: friday")

	require.Len(t, form.Fields, 1)
	assert.Equal(t, "preferredDeliveryDay", form.Fields[0].Key)
	assert.Equal(t, "friday", form.Fields[0].Value)
}

func TestSet_PlaceholderClearsField(t *testing.T) {
	form := ExtractFields("Что узнать:\nСроки*: через месяц")
	require.True(t, form.CanComplete())

	form.Set("timeline", "___")
	assert.False(t, form.CanComplete())
	assert.False(t, form.Set("unknown", "x"))
}

func TestIsPlaceholder(t *testing.T) {
	for _, v := range []string{"", " ", "___", "_", "...", "…", "—", "-", "?"} {
		assert.True(t, IsPlaceholder(v), "%q", v)
	}
	for _, v := range []string{"0", "нет", "a_b"} {
		assert.False(t, IsPlaceholder(v), "%q", v)
	}
}

func TestKeyForLabel(t *testing.T) {
	assert.Equal(t, "name", KeyForLabel("Имя клиента"))
	assert.Equal(t, "preferredModels", KeyForLabel("Модели (2-3 варианта)"))
	assert.Equal(t, "timeline", KeyForLabel("Сроки покупки"))
	assert.Equal(t, "gearbox", KeyForLabel("КПП"))
	assert.Equal(t, "preferredBrands", KeyForLabel("Марка  авто"))
	assert.Equal(t, "year", KeyForLabel("Год выпуска?"))
}

func TestKeyForLabel_WholeLabelsOnly(t *testing.T) {
	for _, label := range []string{"Годовой доход", "Маркетинговый канал", "Имярек", "Цветовая гамма салона"} {
		key := KeyForLabel(label)
		assert.Equal(t, strcase.ToCamel(strings.ToLower(label)), key, label)
	}
	assert.NotEqual(t, "year", KeyForLabel("Годовой доход"))
}

func TestExtractFields_SimilarLabelsStaySeparate(t *testing.T) {
	form := ExtractFields("Что узнать:\n- Год*: 2020\n- Годовой доход: 100")

	require.Len(t, form.Fields, 2)
	assert.Equal(t, Field{Key: "year", Label: "Год", Value: "2020", Required: true, Filled: true}, form.Fields[0])
	assert.Equal(t, "Годовой доход", form.Fields[1].Label)
	assert.Equal(t, "100", form.Fields[1].Value)
	assert.False(t, form.Fields[1].Required)
}

func countOf(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
