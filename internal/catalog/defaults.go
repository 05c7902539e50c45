package catalog

// Default builds the built-in threat catalog: ten topic types with
// baseline severities, synonym sets, the keyword groups scanned during
// extraction and the keyword-to-topic boost table.
func Default() (*Catalog, error) {
	topics := []Topic{
		{
			ID:       "ransomware attack",
			Severity: 5,
			Category: "Malware",
			Synonyms: []string{"ransomware", "crypto locker", "ransom malware", "encryption attack"},
		},
		{
			ID:       "data breach",
			Severity: 4,
			Category: "Data Security",
			Synonyms: []string{"data leak", "information breach", "data compromise", "data theft", "breach"},
		},
		{
			ID:       "cyber attack",
			Severity: 4,
			Category: "General Attack",
			Synonyms: []string{"cyberattack", "cyber incident", "security breach", "hack", "attack"},
		},
		{
			ID:       "phishing campaign",
			Severity: 3,
			Category: "Social Engineering",
			Synonyms: []string{"phishing", "email scam", "social engineering", "spear phishing", "business email compromise"},
		},
		{
			ID:       "malware outbreak",
			Severity: 4,
			Category: "Malware",
			Synonyms: []string{"malware", "virus", "trojan", "worm", "malicious software"},
		},
		{
			ID:       "zero day vulnerability",
			Severity: 5,
			Category: "Vulnerability",
			Synonyms: []string{"zero-day", "0day", "vulnerability", "exploit", "security flaw"},
		},
		{
			ID:       "supply chain attack",
			Severity: 5,
			Category: "Advanced Threat",
			Synonyms: []string{"supply chain", "third party attack", "vendor compromise"},
		},
		{
			ID:       "ddos attack",
			Severity: 3,
			Category: "Infrastructure",
			Synonyms: []string{"ddos", "denial of service", "dos attack", "botnet attack"},
		},
		{
			ID:       "insider threat",
			Severity: 4,
			Category: "Insider Risk",
			Synonyms: []string{"insider attack", "internal threat", "rogue employee", "privilege abuse"},
		},
		{
			ID:       "apt group",
			Severity: 5,
			Category: "Advanced Persistent Threat",
			Synonyms: []string{"apt", "advanced persistent threat", "nation state", "state sponsored"},
		},
	}

	groups := []KeywordGroup{
		{Name: "attacks", Keywords: []string{"attack", "exploit", "breach", "hack", "compromise", "intrusion", "incident"}},
		{Name: "malware", Keywords: []string{"malware", "virus", "trojan", "ransomware", "spyware", "adware", "rootkit", "worm"}},
		{Name: "techniques", Keywords: []string{"phishing", "spoofing", "social engineering", "brute force", "sql injection", "xss"}},
		{Name: "vulnerabilities", Keywords: []string{"vulnerability", "exploit", "zero-day", "0day", "cve", "patch", "flaw"}},
		{Name: "threats", Keywords: []string{"threat", "risk", "apt", "insider", "nation state", "cybercriminal"}},
		{Name: "infrastructure", Keywords: []string{"ddos", "botnet", "c2", "command and control", "infrastructure"}},
		{Name: "data", Keywords: []string{"data", "information", "credentials", "personal", "sensitive", "confidential"}},
	}

	boosts := []BoostRule{
		{Group: "attacks", Keyword: "attack", TopicID: "cyber attack", Boost: 3, Conditional: true},
		{Group: "attacks", Keyword: "breach", TopicID: "data breach", Boost: 8},
		{Group: "malware", Keyword: "ransomware", TopicID: "ransomware attack", Boost: 10},
		{Group: "malware", Keyword: "virus", TopicID: "malware outbreak", Boost: 4},
		{Group: "malware", Keyword: "trojan", TopicID: "malware outbreak", Boost: 4},
		{Group: "malware", Keyword: "worm", TopicID: "malware outbreak", Boost: 4},
		{Group: "techniques", Keyword: "phishing", TopicID: "phishing campaign", Boost: 10},
		{Group: "vulnerabilities", Keyword: "zero-day", TopicID: "zero day vulnerability", Boost: 8},
		{Group: "vulnerabilities", Keyword: "0day", TopicID: "zero day vulnerability", Boost: 8},
		{Group: "infrastructure", Keyword: "ddos", TopicID: "ddos attack", Boost: 10},
	}

	highImpact := []string{
		"critical", "widespread", "global", "massive", "unprecedented",
		"emergency", "urgent", "severe", "major", "significant",
		"exploit", "vulnerability", "breach", "compromise", "attack",
	}

	majorSources := []string{
		"krebs", "bleeping", "dark reading", "threatpost",
		"security", "cyber", "infosec", "sans",
	}

	return New(topics, groups, boosts, highImpact, majorSources)
}
