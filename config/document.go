package config

import (
	"golang.org/x/text/language"

	"tocidx/layout"
)

const coreFamily = "Helvetica"

// FamilyName returns font family used for all generated text.
func (conf *FontsConfig) FamilyName() string {
	if len(conf.Regular) == 0 {
		return coreFamily
	}
	return conf.Family
}

// Files maps font styles to TrueType files, styles without file reuse regular
// face. Empty map means core fonts.
func (conf *FontsConfig) Files() map[string]string {
	if len(conf.Regular) == 0 {
		return map[string]string{}
	}
	files := map[string]string{"": conf.Regular, "B": conf.Regular, "I": conf.Regular, "BI": conf.Regular}
	for style, path := range map[string]string{"B": conf.Bold, "I": conf.Italic, "BI": conf.BoldItalic} {
		if len(path) > 0 {
			files[style] = path
		}
	}
	return files
}

func (conf FontConfig) font(family string) layout.Font {
	return layout.Font{Family: family, Style: conf.Style, Size: conf.Size}
}

// Layout builds composition settings.
func (conf *DocumentConfig) Layout() layout.Settings {
	family := conf.Fonts.FamilyName()
	return layout.Settings{
		Geometry: layout.Geometry{
			Width:     conf.Page.Width,
			Height:    conf.Page.Height,
			Top:       conf.Page.MarginTop,
			Bottom:    conf.Page.MarginBottom,
			Left:      conf.Page.MarginLeft,
			Right:     conf.Page.MarginRight,
			ColumnGap: conf.Page.ColumnGap,
		},
		MatchBody:   conf.Page.MatchBody,
		Numbering:   conf.Numbering,
		LineSpacing: conf.LineSpacing,
		Outline: layout.OutlineSettings{
			Title:         conf.Outline.Title,
			TitleFont:     conf.Outline.TitleFont.font(family),
			Level1:        conf.Outline.Level1Font.font(family),
			LevelN:        conf.Outline.LevelNFont.font(family),
			IndentStep:    conf.Outline.Indent,
			NumberReserve: conf.Outline.NumberReserve,
			LeaderGap:     conf.Outline.LeaderGap,
		},
		Index: layout.IndexSettings{
			Title:         conf.Index.Title,
			TitleFont:     conf.Index.TitleFont.font(family),
			Header:        conf.Index.HeaderFont.font(family),
			Term:          conf.Index.TermFont.font(family),
			Ref:           conf.Index.RefFont.font(family),
			HangingIndent: conf.Index.HangingIndent,
			CatchAll:      conf.Index.CatchAll,
		},
	}
}

// UsedFonts lists every font composition may use, so they could be checked before
// any work is done.
func (conf *DocumentConfig) UsedFonts() []layout.Font {
	s := conf.Layout()
	return []layout.Font{
		s.Outline.TitleFont, s.Outline.Level1, s.Outline.LevelN,
		s.Index.TitleFont, s.Index.Header, s.Index.Term, s.Index.Ref,
	}
}

// LanguageTag returns collation language for index terms, validation guarantees
// the tag is well formed.
func (conf *IndexConfig) LanguageTag() language.Tag {
	tag, err := language.Parse(conf.Language)
	if err != nil {
		return language.Und
	}
	return tag
}
