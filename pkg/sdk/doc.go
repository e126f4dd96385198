// Package sanjeevani embeds the community-health triage pipeline in a Go program.
//
// The client loads a guideline corpus, builds the retrieval index and runs the
// same pipeline the HTTP server runs: symptom extraction, guideline retrieval,
// reranking, knowledge-graph augmentation, risk classification and the urgent
// alert gate. Embedding and generative providers are optional; without them
// every stage uses its deterministic fallback.
//
//	client, err := sanjeevani.New(ctx,
//	    sanjeevani.WithGuidelinesFile("data/guidelines.json"),
//	    sanjeevani.WithKnowledgeGraphFile("data/knowledge_graph.json"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	rec, err := client.Analyze(ctx, "child has fever and neck stiffness")
//	fmt.Println(rec.RiskLevel, rec.UrgentAlert, rec.SoapNote.Plan)
package sanjeevani
