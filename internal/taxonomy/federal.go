package taxonomy

// Federal returns the expanded tables used for USAJobs API postings.
func Federal() Taxonomy {
	generic := Generic()
	return Taxonomy{
		Name:     "federal",
		JobTypes: generic.JobTypes,
		TechnicalSkills: []Category{
			{Name: "Programming Languages", UpperMaxLen: 4, Keywords: []string{
				"python", "java", "javascript", "typescript", "c++", "c#", "ruby",
				"go", "rust", "swift", "kotlin", "php", "r", "matlab", "scala",
				"sql", "nosql", "html", "css", "perl", "vba", "shell scripting",
				"bash", "powershell", "sas", "spss", "stata",
			}},
			{Name: "Data Science & Analytics", Keywords: []string{
				"machine learning", "deep learning", "ai", "artificial intelligence",
				"data analysis", "data analytics", "statistics", "statistical analysis",
				"data visualization", "tableau", "power bi", "excel", "data mining",
				"predictive modeling", "quantitative analysis", "regression", "modeling",
				"big data", "hadoop", "spark", "pandas", "numpy", "scikit-learn",
				"tensorflow", "pytorch", "neural networks", "nlp", "natural language processing",
				"data warehousing", "etl", "business intelligence", "reporting",
				"dashboards", "metrics", "kpi", "analytics",
			}},
			{Name: "Cloud & DevOps", Upper: []string{"aws", "gcp"}, Keywords: []string{
				"aws", "azure", "gcp", "google cloud", "cloud computing",
				"docker", "kubernetes", "ci/cd", "jenkins", "devops",
				"terraform", "ansible", "linux", "unix", "bash",
				"containerization", "microservices", "serverless",
				"infrastructure as code", "automation", "monitoring",
				"grafana", "prometheus", "elastic", "deployment",
			}},
			{Name: "Security & Compliance", UpperMaxLen: 5, Keywords: []string{
				"cybersecurity", "information security", "infosec",
				"penetration testing", "encryption", "security clearance",
				"vulnerability", "risk assessment", "compliance", "fisma",
				"nist", "fedramp", "iso 27001", "hipaa", "gdpr",
				"security operations", "incident response", "threat analysis",
				"firewall", "ids", "ips", "siem", "authentication",
				"authorization", "access control",
			}},
			{Name: "Office & Productivity", Keywords: []string{
				"microsoft office", "excel", "word", "powerpoint", "outlook",
				"sharepoint", "google workspace", "microsoft teams", "slack",
				"office 365", "g suite", "onedrive", "google docs",
				"google sheets", "access", "visio", "project",
			}},
			{Name: "Research & Analysis", Keywords: []string{
				"research", "policy analysis", "program evaluation",
				"qualitative analysis", "quantitative research", "survey design",
				"grant writing", "budget analysis", "cost-benefit analysis",
				"strategic planning", "feasibility study", "impact assessment",
				"literature review", "case study", "needs assessment",
				"data collection", "field research", "archival research",
			}},
			{Name: "Design & Creative", Keywords: []string{
				"graphic design", "ui/ux", "user experience", "user interface",
				"adobe creative suite", "photoshop", "illustrator", "indesign",
				"figma", "sketch", "wireframing", "prototyping",
				"web design", "visual design", "branding", "typography",
				"video editing", "premiere", "final cut",
			}},
			{Name: "Project Management", Upper: []string{"pmp"}, Keywords: []string{
				"project management", "agile", "scrum", "kanban", "waterfall",
				"pmp", "prince2", "jira", "trello", "asana", "monday.com",
				"gantt chart", "risk management", "stakeholder management",
				"change management", "process improvement", "six sigma",
				"lean", "sprint planning", "backlog management",
			}},
			{Name: "Financial & Budget", Keywords: []string{
				"budget", "budgeting", "financial analysis", "financial management",
				"cost analysis", "forecasting", "accounting", "bookkeeping",
				"financial reporting", "accounts payable", "accounts receivable",
				"procurement", "contract management", "grants management",
				"fiscal management", "appropriations", "obligations",
			}},
		},
		SoftSkills: []string{
			"communication", "written communication", "verbal communication",
			"oral communication", "interpersonal communication",
			"presentation skills", "public speaking", "briefing",
			"teamwork", "collaboration", "team player", "cross-functional",
			"stakeholder engagement", "relationship building",
			"leadership", "management", "supervision", "mentoring",
			"coaching", "delegation", "team building",
			"problem solving", "critical thinking", "analytical thinking",
			"analytical skills", "decision making", "judgment",
			"attention to detail", "detail oriented", "accuracy",
			"thoroughness", "precision",
			"time management", "organizational skills", "multitasking",
			"prioritization", "planning", "scheduling",
			"interpersonal skills", "customer service", "client relations",
			"stakeholder relations", "diplomacy", "tact",
			"adaptability", "flexibility", "agility", "resilience",
			"change management", "problem resolution",
			"initiative", "self-motivated", "independent", "proactive",
			"self-starter", "autonomous",
			"work ethic", "reliability", "dependability", "commitment",
			"dedication", "professionalism",
			"creativity", "innovation", "creative thinking",
			"conflict resolution", "negotiation", "persuasion",
			"cultural competency", "emotional intelligence",
		},
		Sectors: []Category{
			{Name: "Government", Keywords: []string{"federal", "government", "agency", "department"}},
			{Name: "Technology", Keywords: []string{"technology", "it", "software", "digital"}},
			{Name: "Healthcare", Keywords: []string{"health", "medical", "cdc", "nih"}},
			{Name: "Science", Keywords: []string{"science", "research", "nasa", "laboratory"}},
			{Name: "Defense", Keywords: []string{"defense", "military", "homeland", "intelligence"}},
			{Name: "Education", Keywords: []string{"education", "student", "academic"}},
		},
		WorkFormats:   generic.WorkFormats,
		DefaultSector: "Government",
		Strict: StrictRules{
			InternshipTitle: []string{"internship", "intern program", "student trainee", "pathways intern"},
			InternshipLead:  []string{"internship program", "intern position"},
			FellowshipTitle: []string{"fellowship", "presidential management fellow"},
			FellowshipLead:  []string{"fellowship program"},
			LeadWindow:      200,
		},
	}
}
