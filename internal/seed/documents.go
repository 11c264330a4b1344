package seed

import "github.com/zfogg/citysearch/internal/search"

// SampleDocuments is the fixed demo corpus for the documents index
func SampleDocuments() []search.Document {
	return []search.Document{
		{
			Title:   "Introduction to Elasticsearch",
			Content: "Elasticsearch is a distributed, RESTful search and analytics engine capable of addressing a growing number of use cases. As the heart of the Elastic Stack, it centrally stores your data for lightning fast search, fine-tuned relevancy, and powerful analytics that scale with ease.",
			Tags:    []string{"elasticsearch", "search", "analytics", "tutorial"},
		},
		{
			Title:   "Machine Learning with Python",
			Content: "Machine learning is a method of data analysis that automates analytical model building. It is a branch of artificial intelligence (AI) based on the idea that systems can learn from data, identify patterns and make decisions with minimal human intervention.",
			Tags:    []string{"machine learning", "python", "ai", "data science"},
		},
		{
			Title:   "React Best Practices",
			Content: "React is a JavaScript library for building user interfaces. It lets you compose complex UIs from small and isolated pieces of code called components. This guide covers the best practices for writing maintainable React applications.",
			Tags:    []string{"react", "javascript", "frontend", "best practices"},
		},
		{
			Title:   "Database Design Principles",
			Content: "Database design is the organization of data according to a database model. The designer determines what data must be stored and how the data elements interrelate. With this information, they can begin to fit the data to the database model.",
			Tags:    []string{"database", "design", "sql", "architecture"},
		},
		{
			Title:   "API Development with Node.js",
			Content: "Node.js is a JavaScript runtime built on Chrome's V8 JavaScript engine. It's designed to build scalable network applications. This tutorial covers creating RESTful APIs using Node.js and Express framework.",
			Tags:    []string{"nodejs", "api", "javascript", "backend"},
		},
		{
			Title:   "Docker Container Orchestration",
			Content: "Docker is a set of platform as a service products that use OS-level virtualization to deliver software in packages called containers. Container orchestration automates the deployment, management, scaling, and networking of containers.",
			Tags:    []string{"docker", "containers", "devops", "orchestration"},
		},
		{
			Title:   "TypeScript Advanced Features",
			Content: "TypeScript is a programming language developed and maintained by Microsoft. It is a strict syntactical superset of JavaScript and adds optional static type checking to the language. This guide explores advanced TypeScript features.",
			Tags:    []string{"typescript", "javascript", "programming", "types"},
		},
		{
			Title:   "Cloud Computing Fundamentals",
			Content: "Cloud computing is the on-demand availability of computer system resources, especially data storage and computing power, without direct active management by the user. The term is generally used to describe data centers available to many users over the Internet.",
			Tags:    []string{"cloud", "aws", "computing", "infrastructure"},
		},
	}
}
