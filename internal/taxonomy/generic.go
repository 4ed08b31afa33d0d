package taxonomy

// Generic returns the tables used for postings discovered on arbitrary career pages.
func Generic() Taxonomy {
	return Taxonomy{
		Name: "generic",
		JobTypes: []Category{
			{Name: "internship", Keywords: []string{"intern", "internship", "summer program", "co-op"}},
			{Name: "job", Keywords: []string{"full-time", "full time", "permanent", "career", "position"}},
			{Name: "fellowship", Keywords: []string{"fellowship", "fellow", "postdoc", "post-doctoral"}},
		},
		TechnicalSkills: []Category{
			{Name: "Programming Languages", Keywords: []string{
				"python", "java", "javascript", "typescript", "c++", "c#", "ruby",
				"go", "rust", "swift", "kotlin", "php", "r", "matlab", "scala",
			}},
			{Name: "Web Development", Keywords: []string{
				"react", "angular", "vue", "node.js", "django", "flask", "spring",
				"html", "css", "rest api", "graphql", "webpack",
			}},
			{Name: "Data Science", Keywords: []string{
				"machine learning", "deep learning", "neural networks", "nlp",
				"computer vision", "data analysis", "statistics", "sql", "nosql",
				"pandas", "numpy", "scikit-learn", "tensorflow", "pytorch",
			}},
			{Name: "Cloud & DevOps", Keywords: []string{
				"aws", "azure", "gcp", "docker", "kubernetes", "ci/cd", "jenkins",
				"terraform", "ansible", "linux", "unix", "bash",
			}},
			{Name: "Security", Keywords: []string{
				"cybersecurity", "penetration testing", "encryption", "authentication",
				"security clearance", "firewall", "vulnerability",
			}},
			{Name: "Design", Keywords: []string{
				"ui/ux", "figma", "sketch", "adobe", "photoshop", "illustrator",
			}},
		},
		SoftSkills: []string{
			"communication", "teamwork", "leadership", "problem solving",
			"analytical", "critical thinking", "collaboration", "presentation",
			"writing", "research", "project management", "agile", "scrum",
		},
		Sectors: []Category{
			{Name: "Technology", Keywords: []string{"software", "it", "tech", "digital", "computing"}},
			{Name: "Healthcare", Keywords: []string{"health", "medical", "clinical", "hospital", "patient"}},
			{Name: "Finance", Keywords: []string{"finance", "banking", "investment", "trading", "fintech"}},
			{Name: "Government", Keywords: []string{"government", "federal", "state", "public sector", "policy"}},
			{Name: "Education", Keywords: []string{"education", "academic", "teaching", "research", "university"}},
			{Name: "Energy", Keywords: []string{"energy", "renewable", "utilities", "power", "environmental"}},
			{Name: "Defense", Keywords: []string{"defense", "military", "national security", "intelligence"}},
			{Name: "Science", Keywords: []string{"research", "laboratory", "scientific", "engineering"}},
		},
		WorkFormats: []Category{
			{Name: "remote", Keywords: []string{"remote", "work from home", "wfh", "virtual", "telecommute"}},
			{Name: "hybrid", Keywords: []string{"hybrid", "flexible", "mix of remote"}},
			{Name: "onsite", Keywords: []string{"on-site", "onsite", "in-person", "office-based"}},
		},
		DefaultSector: "General",
	}
}
