// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package devstub

import (
	"strings"

	"github.com/mevzuai/enerji-asistan/pkg/sse"
)

// =============================================================================
// Canned Corpus
// =============================================================================

// entry pairs a canned answer with the citations backing it.
type entry struct {
	keywords []string
	answer   string
	sources  []sse.Source
}

// corpus is a handful of pre-written answers on Turkish energy market
// legislation, enough to exercise the client end to end without a
// retrieval backend. Matching is keyword-based and case-insensitive.
var corpus = []entry{
	{
		keywords: []string{"önlisans", "onlisans"},
		answer: "Önlisans, üretim lisansı başvurusu öncesinde verilen ve " +
			"yatırımcıya tesis kurmak için gerekli izinleri edinme hakkı " +
			"tanıyan bir yetkilendirmedir. Önlisans süresi kural olarak " +
			"yirmi dört ayı geçemez; mücbir sebep hâlleri dışında bu süre " +
			"en fazla otuz altı aya kadar uzatılabilir.",
		sources: []sse.Source{
			{
				SourceFile:    "elektrik_piyasasi_kanunu.pdf",
				ArticleNumber: "6",
				Section:       "Önlisans",
				Content:       "Önlisans süresi mücbir sebep hâlleri hariç yirmi dört ayı geçemez...",
			},
			{
				SourceFile:    "lisans_yonetmeligi.pdf",
				ArticleNumber: "12",
				Section:       "Önlisans süresi",
				Content:       "Kurul kararıyla önlisans süresi en fazla otuz altı aya kadar uzatılabilir...",
			},
		},
	},
	{
		keywords: []string{"lisans"},
		answer: "Üretim lisansı başvuruları Kuruma yazılı olarak yapılır. " +
			"Başvuruda şirketin esas sözleşmesi, teminat mektubu ve tesise " +
			"ilişkin bilgiler yer alır. Kurum, eksiksiz başvuruları kırk " +
			"beş gün içinde inceleyip sonuçlandırır.",
		sources: []sse.Source{
			{
				SourceFile:    "elektrik_piyasasi_kanunu.pdf",
				ArticleNumber: "7",
				Section:       "Lisans esasları",
				Content:       "Lisans başvurularının inceleme ve değerlendirmesi Kurum tarafından yapılır...",
			},
			{
				SourceFile:    "lisans_yonetmeligi.pdf",
				ArticleNumber: "14",
				Section:       "Başvuru usulü",
				Content:       "Lisans başvurusu, başvuru dilekçesi ve ekli belgelerle birlikte yapılır...",
			},
		},
	},
	{
		keywords: []string{"yeka"},
		answer: "YEKA yarışmaları, yenilenebilir enerji kaynak alanlarının " +
			"yatırımcılara tahsisi için yapılır. Yarışma şartnamesinde " +
			"yerli aksam kullanım oranı, tavan fiyat ve teminat koşulları " +
			"belirlenir; en düşük teklifi veren istekli yarışmayı kazanır.",
		sources: []sse.Source{
			{
				SourceFile:    "yeka_yonetmeligi.pdf",
				ArticleNumber: "4",
				Section:       "Yarışma",
				Content:       "YEKA yarışması, şartnamede belirtilen usul ve esaslara göre yapılır...",
			},
		},
	},
	{
		keywords: []string{"teminat"},
		answer: "Önlisans ve lisans başvurularında sunulacak teminat mektubu " +
			"tutarı, kurulu güç başına Kurul kararıyla belirlenir. Teminat, " +
			"yükümlülüklerin yerine getirilmemesi hâlinde irat kaydedilir.",
		sources: []sse.Source{
			{
				SourceFile:    "lisans_yonetmeligi.pdf",
				ArticleNumber: "19",
				Section:       "Teminat",
				Content:       "Teminat mektubu tutarı her yıl Kurul kararı ile belirlenir...",
			},
			{
				SourceFile:    "lisans_yonetmeligi.pdf",
				ArticleNumber: "19",
				Section:       "Teminat",
				Content:       "Teminat mektubu tutarı her yıl Kurul kararı ile belirlenir...",
			},
		},
	},
}

// defaultAnswer is used when no keyword matches.
const defaultAnswer = "Bu konuda mevzuatta doğrudan bir düzenleme bulamadım. " +
	"Sorunuzu lisans, önlisans, YEKA veya teminat başlıkları üzerinden " +
	"yeniden ifade etmeyi deneyebilirsiniz."

// lookup picks the canned entry for a query.
func lookup(query string) entry {
	lowered := strings.ToLower(query)
	for _, e := range corpus {
		for _, keyword := range e.keywords {
			if strings.Contains(lowered, keyword) {
				return e
			}
		}
	}
	return entry{answer: defaultAnswer}
}

// dedupeSources drops citations that repeat an earlier source_file and
// article_number pair, keeping first occurrence order.
func dedupeSources(sources []sse.Source) []sse.Source {
	type key struct {
		file    string
		article sse.ArticleNumber
	}
	seen := make(map[key]struct{}, len(sources))
	out := make([]sse.Source, 0, len(sources))
	for _, source := range sources {
		k := key{file: source.SourceFile, article: source.ArticleNumber}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, source)
	}
	return out
}
