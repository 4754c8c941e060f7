package jenkins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/census/internal/models"
)

const scmPipelineConfig = `<?xml version='1.1' encoding='UTF-8'?>
<flow-definition plugin="workflow-job@2.40">
  <actions/>
  <description>Deploys the payments service</description>
  <definition class="org.jenkinsci.plugins.workflow.cps.CpsScmFlowDefinition" plugin="workflow-cps@2.90">
    <scm class="hudson.plugins.git.GitSCM" plugin="git@4.7.1">
      <userRemoteConfigs>
        <hudson.plugins.git.UserRemoteConfig>
          <url>git@gitlab.example.com:payments/service.git</url>
          <credentialsId>gitlab-ci</credentialsId>
        </hudson.plugins.git.UserRemoteConfig>
      </userRemoteConfigs>
      <branches>
        <hudson.plugins.git.BranchSpec>
          <name>*/master</name>
        </hudson.plugins.git.BranchSpec>
      </branches>
    </scm>
    <scriptPath>ci/Jenkinsfile</scriptPath>
    <lightweight>true</lightweight>
  </definition>
</flow-definition>`

const inlinePipelineConfig = `<?xml version='1.1' encoding='UTF-8'?>
<flow-definition plugin="workflow-job@2.40">
  <definition class="org.jenkinsci.plugins.workflow.cps.CpsFlowDefinition" plugin="workflow-cps@2.90">
    <script>node { sh 'make' }</script>
    <sandbox>true</sandbox>
  </definition>
</flow-definition>`

const freestyleConfig = `<?xml version='1.1' encoding='UTF-8'?>
<project>
  <scm class="hudson.plugins.git.GitSCM">
    <userRemoteConfigs>
      <hudson.plugins.git.UserRemoteConfig>
        <url>https://gitlab.example.com/tools/scripts.git</url>
      </hudson.plugins.git.UserRemoteConfig>
    </userRemoteConfigs>
    <branches>
      <hudson.plugins.git.BranchSpec>
        <name>**</name>
      </hudson.plugins.git.BranchSpec>
    </branches>
  </scm>
</project>`

const multibranchConfig = `<?xml version='1.1' encoding='UTF-8'?>
<org.jenkinsci.plugins.workflow.multibranch.WorkflowMultiBranchProject plugin="workflow-multibranch@2.23">
  <sources class="jenkins.branch.MultiBranchProject$BranchSourceList">
    <data>
      <jenkins.branch.BranchSource>
        <source class="jenkins.plugins.git.GitSCMSource">
          <remote>https://gitlab.example.com/payments/service.git</remote>
          <credentialsId>gitlab-ci</credentialsId>
        </source>
      </jenkins.branch.BranchSource>
    </data>
  </sources>
  <factory class="org.jenkinsci.plugins.workflow.multibranch.WorkflowBranchProjectFactory">
    <scriptPath>Jenkinsfile</scriptPath>
  </factory>
</org.jenkinsci.plugins.workflow.multibranch.WorkflowMultiBranchProject>`

func TestParseJobConfigSCMPipeline(t *testing.T) {
	md, err := parseJobConfig([]byte(scmPipelineConfig))
	require.NoError(t, err)

	assert.Equal(t, models.PipelineTypePipeline, md.PipelineType)
	assert.Equal(t, "git@gitlab.example.com:payments/service.git", md.SCMURL)
	assert.Equal(t, "ci/Jenkinsfile", md.JenkinsfilePath)
	assert.Equal(t, "*/master", md.BranchSpecifier)
}

func TestParseJobConfigInlinePipeline(t *testing.T) {
	md, err := parseJobConfig([]byte(inlinePipelineConfig))
	require.NoError(t, err)

	assert.Equal(t, models.PipelineTypePipeline, md.PipelineType)
	assert.Empty(t, md.SCMURL)
	assert.Empty(t, md.JenkinsfilePath, "inline scripts have no Jenkinsfile to fetch")
}

func TestParseJobConfigFreestyle(t *testing.T) {
	md, err := parseJobConfig([]byte(freestyleConfig))
	require.NoError(t, err)

	assert.Equal(t, models.PipelineTypeFreestyle, md.PipelineType)
	assert.Equal(t, "https://gitlab.example.com/tools/scripts.git", md.SCMURL)
	assert.Empty(t, md.JenkinsfilePath)
	assert.Equal(t, "**", md.BranchSpecifier)
}

func TestParseJobConfigMultibranch(t *testing.T) {
	md, err := parseJobConfig([]byte(multibranchConfig))
	require.NoError(t, err)

	assert.Equal(t, models.PipelineTypeMultibranch, md.PipelineType)
	assert.Equal(t, "https://gitlab.example.com/payments/service.git", md.SCMURL)
	assert.Equal(t, "Jenkinsfile", md.JenkinsfilePath)
	assert.Equal(t, "**", md.BranchSpecifier, "multibranch defaults to wildcard")
}

func TestParseJobConfigInvalidXML(t *testing.T) {
	_, err := parseJobConfig([]byte("<project><unclosed"))
	assert.Error(t, err)
}
